// Package timeparse turns free-form Russian text into a reminder message and
// a due time. It understands relative offsets («через 30 минут»), numeric
// dates («19.02», «20.02.2026», «20/02»), relative day names («сегодня»,
// «завтра», «послезавтра»), weekday references («в пятницу») and time-of-day
// phrases («в 10:00», «в 10-00», «в 18.30», «в 7 вечера», «в 13 часов»,
// «в 20»).
//
// When several expression classes could match, the earliest class in the
// order above wins: a relative offset fully determines the due time even if
// the sentence also carries an absolute date.
package timeparse

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	apperrors "pingme/internal/pkg/errors"
)

// Kind discriminates parse outcomes.
type Kind int

const (
	// Unparseable means no usable temporal expression was recognized.
	Unparseable Kind = iota
	// Resolved means both a date and a time of day were found.
	Resolved
	// DateOnly means a calendar date was found but no time of day;
	// the caller should ask the user for one.
	DateOnly
)

// Result is the outcome of parsing one input sentence.
type Result struct {
	Kind    Kind
	Message string    // input minus the consumed temporal expressions
	DueAt   time.Time // set when Kind == Resolved
	Date    time.Time // midnight of the resolved date, set when Kind == DateOnly
	Reason  error     // for Unparseable: ErrInvalidDate or ErrPastTime when known, else nil
}

// Every extraction pattern follows one convention: group 1 is the leading
// boundary (start of string, space or comma), the last group is the trailing
// boundary. Everything in between is the consumed span.
var (
	reRemindPrefix = regexp.MustCompile(`(?i)^напомни(?:те)?(?:\s+мне)?[\s,:]+`)

	reRelative     = regexp.MustCompile(`(?i)(^|[\s,])через\s+(\d+)\s+(минут[а-яё]*|час[а-яё]*|д(?:ень|ня|ней))($|[\s,.!?])`)
	reRelativeBare = regexp.MustCompile(`(?i)(^|[\s,])через\s+(полчаса|пол\s+часа|час)($|[\s,.!?])`)

	reFullDate  = regexp.MustCompile(`(^|[\s,])(\d{1,2})[./](\d{1,2})[./](\d{4})($|[\s,.!?])`)
	reShortDate = regexp.MustCompile(`(^|[\s,])(\d{1,2})[./](\d{1,2})($|[\s,.!?])`)
	reDayWord   = regexp.MustCompile(`(?i)(^|[\s,])(послезавтра|завтра|сегодня)($|[\s,.!?])`)
	reWeekday   = regexp.MustCompile(`(?i)(^|[\s,])во?\s+(понедельник|вторник|сред[ауы]|четверг|пятниц[ауы]|суббот[ауы]|воскресень[ея])($|[\s,.!?])`)

	reClock = regexp.MustCompile(`(^|[\s,])(?:[вВ]о?\s+)?(\d{1,2}):(\d{2})($|[\s,.!?])`)

	// Normalization patterns: rewrite colloquial time forms into HH:MM so a
	// single clock recognizer handles them all.
	reMorning  = regexp.MustCompile(`(?i)(^|[\s,])в\s+(\d{1,2})\s+утра($|[\s,.!?])`)
	reEvening  = regexp.MustCompile(`(?i)(^|[\s,])в\s+(\d{1,2})\s+(?:вечера|вечером)($|[\s,.!?])`)
	reNight    = regexp.MustCompile(`(?i)(^|[\s,])в\s+(\d{1,2})\s+ночи($|[\s,.!?])`)
	reAfternon = regexp.MustCompile(`(?i)(^|[\s,])в\s+(\d{1,2})\s+дня($|[\s,.!?])`)
	reHoursTok = regexp.MustCompile(`(?i)(^|[\s,])в\s+(\d{1,2})\s+час(?:ов|а)?($|[\s,.!?])`)
	reDashTime = regexp.MustCompile(`(?i)(^|[\s,])в\s+(\d{1,2})-(\d{2})($|[\s,.!?])`)
	reDotTime  = regexp.MustCompile(`(?i)(^|[\s,])(в\s+)?(\d{1,2})\.(\d{2})($|[\s,.!?])`)
	reBareHour = regexp.MustCompile(`(?i)(^|[\s,])в\s+(\d{1,2})($|[\s,!?])`)

	reSpaces = regexp.MustCompile(`\s+`)
)

var weekdayNames = []struct {
	prefix string
	day    time.Weekday
}{
	{"понедельник", time.Monday},
	{"вторник", time.Tuesday},
	{"сред", time.Wednesday},
	{"четверг", time.Thursday},
	{"пятниц", time.Friday},
	{"суббот", time.Saturday},
	{"воскресень", time.Sunday},
}

// Parse analyzes text against the reference instant in the given timezone.
func Parse(text string, ref time.Time, loc *time.Location) Result {
	if loc == nil {
		loc = time.UTC
	}
	ref = ref.In(loc)

	orig := collapseSpaces(text)
	if orig == "" {
		return Result{Kind: Unparseable, Message: orig}
	}

	work := reRemindPrefix.ReplaceAllString(orig, "")
	if work == "" {
		work = orig
	}
	work = NormalizeTime(work)

	// Class 1: relative offsets win over everything else.
	if d, rest, ok := extractRelative(work); ok {
		return Result{
			Kind:    Resolved,
			Message: cleanupMessage(rest, orig),
			DueAt:   ref.Add(d),
		}
	}

	var (
		date     time.Time
		haveDate bool
	)

	// Classes 2-4: exactly one date expression, in precedence order.
	switch {
	case reFullDate.MatchString(work):
		groups, rest, _ := consume(reFullDate, work)
		day, _ := strconv.Atoi(groups[2])
		month, _ := strconv.Atoi(groups[3])
		year, _ := strconv.Atoi(groups[4])
		d, ok := makeDate(year, month, day, loc)
		if !ok {
			return Result{Kind: Unparseable, Message: orig, Reason: apperrors.ErrInvalidDate}
		}
		date, haveDate = d, true
		work = rest
	case reShortDate.MatchString(work):
		groups, rest, _ := consume(reShortDate, work)
		day, _ := strconv.Atoi(groups[2])
		month, _ := strconv.Atoi(groups[3])
		d, ok := makeDate(ref.Year(), month, day, loc)
		if !ok {
			return Result{Kind: Unparseable, Message: orig, Reason: apperrors.ErrInvalidDate}
		}
		// A short date that already passed this year means next year.
		if d.Before(startOfDay(ref)) {
			d = d.AddDate(1, 0, 0)
		}
		date, haveDate = d, true
		work = rest
	case reDayWord.MatchString(work):
		groups, rest, _ := consume(reDayWord, work)
		offset := 0
		switch strings.ToLower(groups[2]) {
		case "завтра":
			offset = 1
		case "послезавтра":
			offset = 2
		}
		date, haveDate = startOfDay(ref).AddDate(0, 0, offset), true
		work = rest
	case reWeekday.MatchString(work):
		groups, rest, _ := consume(reWeekday, work)
		wd, ok := weekdayFor(groups[2])
		if ok {
			date, haveDate = nextWeekday(ref, wd), true
			work = rest
		}
	}

	// Class 5: time of day (normalization already rewrote colloquial forms).
	var (
		hour, minute int
		haveTime     bool
	)
	if groups, rest, ok := consume(reClock, work); ok {
		hour, _ = strconv.Atoi(groups[2])
		minute, _ = strconv.Atoi(groups[3])
		if hour > 23 || minute > 59 {
			return Result{Kind: Unparseable, Message: orig, Reason: apperrors.ErrInvalidDate}
		}
		haveTime = true
		work = rest
	}

	message := cleanupMessage(work, orig)

	switch {
	case haveDate && haveTime:
		due := time.Date(date.Year(), date.Month(), date.Day(), hour, minute, 0, 0, loc)
		if !due.After(ref) {
			// Dates without a year already rolled forward at the date level;
			// today's date with an elapsed time means the user must re-enter.
			return Result{Kind: Unparseable, Message: orig, Reason: apperrors.ErrPastTime}
		}
		return Result{Kind: Resolved, Message: message, DueAt: due}
	case haveDate:
		if date.Before(startOfDay(ref)) {
			return Result{Kind: Unparseable, Message: orig, Reason: apperrors.ErrPastTime}
		}
		return Result{Kind: DateOnly, Message: message, Date: date}
	case haveTime:
		due := time.Date(ref.Year(), ref.Month(), ref.Day(), hour, minute, 0, 0, loc)
		if !due.After(ref) {
			due = due.AddDate(0, 0, 1)
		}
		return Result{Kind: Resolved, Message: message, DueAt: due}
	default:
		return Result{Kind: Unparseable, Message: orig}
	}
}

// ParseClockTime extracts a bare time-of-day answer («10:00», «9 утра»,
// «7 вечера», «10-00», «20»). Used by the clarification flow.
func ParseClockTime(text string) (hour, minute int, err error) {
	s := collapseSpaces(text)
	if s == "" {
		return 0, 0, fmt.Errorf("%w: пустой ввод", apperrors.ErrUnparseable)
	}
	lower := strings.ToLower(s)
	if !strings.HasPrefix(lower, "в ") && !strings.HasPrefix(lower, "во ") {
		s = "в " + s
	}
	s = NormalizeTime(s)

	groups, _, ok := consume(reClock, s)
	if !ok {
		return 0, 0, fmt.Errorf("%w: %q", apperrors.ErrUnparseable, text)
	}
	hour, _ = strconv.Atoi(groups[2])
	minute, _ = strconv.Atoi(groups[3])
	if hour > 23 || minute > 59 {
		return 0, 0, fmt.Errorf("%w: %02d:%02d", apperrors.ErrInvalidDate, hour, minute)
	}
	return hour, minute, nil
}

// HasExplicitTime reports whether the text carries a time-of-day or a
// relative offset, i.e. whether clarification can be skipped.
func HasExplicitTime(text string) bool {
	s := NormalizeTime(collapseSpaces(text))
	return reClock.MatchString(s) || reRelative.MatchString(s) || reRelativeBare.MatchString(s)
}

// NormalizeTime rewrites colloquial Russian time forms into HH:MM tokens:
// «в 7 утра» → «в 07:00», «в 7 вечера» → «в 19:00», «в 2 ночи» → «в 02:00»,
// «в 2 дня» → «в 14:00», «в 13 часов» → «в 13:00», «в 10-00» → «в 10:00»,
// «в 18.30» → «в 18:30», «в 20» → «в 20:00». Dot pairs that could be a date
// («18.02») are left untouched.
func NormalizeTime(s string) string {
	s = rewrite(reMorning, s, func(h int) (int, bool) { return h, h <= 23 })
	s = rewrite(reEvening, s, func(h int) (int, bool) {
		if h < 12 {
			h += 12
		}
		return h, h <= 23
	})
	s = rewrite(reNight, s, func(h int) (int, bool) {
		if h == 12 {
			h = 0
		}
		return h, h <= 23
	})
	s = rewrite(reAfternon, s, func(h int) (int, bool) {
		if h < 12 {
			h += 12
		}
		return h, h <= 23
	})
	s = rewrite(reHoursTok, s, func(h int) (int, bool) { return h, h <= 23 })

	s = reDashTime.ReplaceAllStringFunc(s, func(m string) string {
		g := reDashTime.FindStringSubmatch(m)
		return g[1] + "в " + g[2] + ":" + g[3] + g[4]
	})

	// «18.00» and «18.30» are times (00 and >12 cannot be months);
	// «18.02» stays ambiguous and is treated as a date downstream.
	s = reDotTime.ReplaceAllStringFunc(s, func(m string) string {
		g := reDotTime.FindStringSubmatch(m)
		h, _ := strconv.Atoi(g[3])
		mn, _ := strconv.Atoi(g[4])
		if h > 23 || mn > 59 || (mn >= 1 && mn <= 12) {
			return m
		}
		return g[1] + "в " + g[3] + ":" + g[4] + g[5]
	})

	// Bare «в 20» only after every richer form had its chance.
	s = rewrite(reBareHour, s, func(h int) (int, bool) { return h, h <= 23 })

	return s
}

func rewrite(re *regexp.Regexp, s string, hourFn func(int) (int, bool)) string {
	return re.ReplaceAllStringFunc(s, func(m string) string {
		g := re.FindStringSubmatch(m)
		h, err := strconv.Atoi(g[2])
		if err != nil {
			return m
		}
		h, ok := hourFn(h)
		if !ok {
			return m
		}
		return fmt.Sprintf("%sв %02d:00%s", g[1], h, g[len(g)-1])
	})
}

// consume finds the first match of re in s and removes the consumed span
// (everything between the boundary groups) from the string. All further
// occurrences of the same span text are removed too, so duplicated
// fragments do not leak into the message.
func consume(re *regexp.Regexp, s string) (groups []string, rest string, ok bool) {
	idx := re.FindStringSubmatchIndex(s)
	if idx == nil {
		return nil, s, false
	}
	n := len(idx) / 2
	groups = make([]string, n)
	for i := 0; i < n; i++ {
		if idx[2*i] >= 0 {
			groups[i] = s[idx[2*i]:idx[2*i+1]]
		}
	}
	coreStart := idx[3] // end of the leading boundary group
	if coreStart < 0 {
		coreStart = idx[0]
	}
	coreEnd := idx[2*(n-1)] // start of the trailing boundary group
	if coreEnd < 0 {
		coreEnd = idx[1]
	}
	core := s[coreStart:coreEnd]
	rest = s[:coreStart] + " " + s[coreEnd:]
	if trimmed := strings.TrimSpace(core); trimmed != "" {
		rest = strings.ReplaceAll(rest, trimmed, " ")
	}
	return groups, rest, true
}

func extractRelative(s string) (time.Duration, string, bool) {
	if groups, rest, ok := consume(reRelative, s); ok {
		n, _ := strconv.Atoi(groups[2])
		unit := strings.ToLower(groups[3])
		var d time.Duration
		switch {
		case strings.HasPrefix(unit, "минут"):
			d = time.Duration(n) * time.Minute
		case strings.HasPrefix(unit, "час"):
			d = time.Duration(n) * time.Hour
		default:
			d = time.Duration(n) * 24 * time.Hour
		}
		return d, rest, true
	}
	if groups, rest, ok := consume(reRelativeBare, s); ok {
		if strings.HasPrefix(strings.ToLower(groups[2]), "пол") {
			return 30 * time.Minute, rest, true
		}
		return time.Hour, rest, true
	}
	return 0, s, false
}

func weekdayFor(name string) (time.Weekday, bool) {
	lower := strings.ToLower(name)
	for _, w := range weekdayNames {
		if strings.HasPrefix(lower, w.prefix) {
			return w.day, true
		}
	}
	return time.Sunday, false
}

// nextWeekday returns the next occurrence of wd strictly after ref:
// naming today's weekday always means next week.
func nextWeekday(ref time.Time, wd time.Weekday) time.Time {
	days := (int(wd) - int(ref.Weekday()) + 7) % 7
	if days == 0 {
		days = 7
	}
	return startOfDay(ref).AddDate(0, 0, days)
}

func makeDate(year, month, day int, loc *time.Location) (time.Time, bool) {
	if month < 1 || month > 12 || day < 1 || day > 31 {
		return time.Time{}, false
	}
	d := time.Date(year, time.Month(month), day, 0, 0, 0, 0, loc)
	if d.Year() != year || int(d.Month()) != month || d.Day() != day {
		return time.Time{}, false
	}
	return d, true
}

func startOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

func collapseSpaces(s string) string {
	return strings.TrimSpace(reSpaces.ReplaceAllString(s, " "))
}

func cleanupMessage(s, fallback string) string {
	s = collapseSpaces(s)
	s = strings.Trim(s, " ,.!-–—")
	fields := strings.Fields(s)
	for len(fields) > 0 && isDanglingWord(fields[len(fields)-1]) {
		fields = fields[:len(fields)-1]
	}
	for len(fields) > 0 && isDanglingWord(fields[0]) {
		fields = fields[1:]
	}
	s = strings.Join(fields, " ")
	if s == "" {
		return collapseSpaces(fallback)
	}
	return s
}

func isDanglingWord(w string) bool {
	switch strings.ToLower(strings.Trim(w, ",.!")) {
	case "в", "во":
		return true
	}
	return false
}
