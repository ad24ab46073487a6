package social

import (
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/riskibarqy/tournament-reconciler/internal/domain/game"
	"github.com/riskibarqy/tournament-reconciler/internal/domain/venue"
	"github.com/riskibarqy/tournament-reconciler/internal/platform/aest"
	"github.com/riskibarqy/tournament-reconciler/internal/platform/textutil"
)

const (
	MinStartingStack         = 10000
	MinStartingStackSuffixed = 5000
	MaxStartingStack         = 500000
	MinBlindLevelMinutes     = 5
	MaxBlindLevelMinutes     = 120
	BuyInSplitTolerance      = 5.0
	maxNameLength            = 100
)

const (
	TournamentTypeReentry    = "REENTRY"
	TournamentTypeFreezeout  = "FREEZEOUT"
	TournamentTypeRebuy      = "REBUY"
	TournamentTypeBounty     = "BOUNTY"
	TournamentTypeSatellite  = "SATELLITE"
	TournamentTypeHyperTurbo = "HYPERTURBO"
	TournamentTypeTurbo      = "TURBO"
	TournamentTypeDeepstack  = "DEEPSTACK"
)

const money = `\$\s?(\d[\d,]*(?:\.\d+)?)\s*(k|m)?\b`

var (
	tournamentURLPattern = regexp.MustCompile(`(?i)\b(?:https?://)?(?:www\.)?kingsroom(?:live)?\.com(?:\.au)?/(?:event|tournament)s?\b[^\s]*`)
	urlIDParamPattern    = regexp.MustCompile(`(?i)[?&]id=(\d+)`)
	urlIDPathPattern     = regexp.MustCompile(`(?i)/(?:event|tournament)s?/(\d+)`)

	dayWords           = `monday|tuesday|wednesday|thursday|friday|saturday|sunday`
	dayFirstPattern    = regexp.MustCompile(`(?i)^(` + dayWords + `)\s+([a-z][a-z']*(?:\s+[a-z][a-z']*){0,2})`)
	dayLastPattern     = regexp.MustCompile(`(?i)^((?:[a-z][a-z']*\s+){1,3})(` + dayWords + `)\b`)
	dayTokenPattern    = regexp.MustCompile(`(?i)\b(` + dayWords + `)s?\b`)
	headingSplit       = regexp.MustCompile(`\s+[-–—|:]+\s+|[!.]`)
	nameStopWords      = map[string]bool{"results": true, "result": true, "tonight": true, "update": true, "recap": true, "winners": true, "at": true, "is": true, "this": true, "from": true, "the": true}
	headingLeadingStop = map[string]bool{"this": true, "results": true, "last": true, "next": true, "every": true, "on": true, "happy": true}

	buyInLabelPattern = regexp.MustCompile(`(?i)\bbuy[- ]?in\s*[:\-]?\s*` + money + `(?:\s*\(\s*` + money + `\s*\+\s*` + money + `\s*\))?`)
	buyInAfterPattern = regexp.MustCompile(`(?i)` + money + `\s*buy[- ]?in\b`)
	buyInSplitPattern = regexp.MustCompile(`(?i)` + money + `\s*\(\s*` + money + `\s*\+\s*` + money + `\s*\)`)

	guaranteePatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?i)` + money + `\s*(?:gtd|guaranteed|guarantee)\b`),
		regexp.MustCompile(`(?i)\b(?:gtd|guaranteed?)\s*[:\-]?\s*` + money),
	}
	prizepoolPatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?i)\bprize\s?pool(?:\s+(?:of|was|is|reached))?\s*[:\-]?\s*` + money),
		regexp.MustCompile(`(?i)` + money + `\s+prize\s?pool\b`),
	}
	entriesPatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?i)\b(\d{1,4})\s*(?:total\s+)?(?:entries|entrants|runners|players)\b`),
		regexp.MustCompile(`(?i)\b(?:entries|entrants|field(?:\s+of)?)\s*[:\-]?\s*(\d{1,4})\b`),
	}
	badBeatPattern = regexp.MustCompile(`(?i)\bbad\s*beat(?:\s+jackpot)?\s*(?:is|of|at|:|-)?\s*(?:now\s+)?(?:at\s+)?` + money)

	stackPatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?i)\bstarting\s+stack\s*(?:of|:|-|is)?\s*(\d[\d,]*(?:\.\d+)?)\s*(k)?\s*(ss)?\b`),
		regexp.MustCompile(`(?i)\b(\d[\d,]*(?:\.\d+)?)\s*(k)?\s*(?:(ss)|starting\s+stack|chips|stack)\b`),
	}
	blindPatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?i)\b(\d{1,3})\s*(?:min(?:ute)?s?|m)\s*(?:blind\s+)?(?:levels?|blinds|clock|rounds?)\b`),
		regexp.MustCompile(`(?i)\b(?:blind\s+)?levels?\s*(?:of|:|-|are)?\s*(\d{1,3})\s*min`),
	}
	lateRegTimePattern  = regexp.MustCompile(`(?i)\blate\s*reg(?:istration|o)?\s*(?:until|till|closes?|ends?|:|-)?\s*(?:at\s+)?(\d{1,2}(?::\d{2})?\s*(?:am|pm))`)
	lateRegLevelPattern = regexp.MustCompile(`(?i)\blate\s*reg(?:istration|o)?[^\n]*?\blevel\s*(\d{1,2})\b`)

	tournamentTypePatterns = []struct {
		value   string
		pattern *regexp.Regexp
	}{
		{TournamentTypeReentry, regexp.MustCompile(`(?i)\bre-?\s?entry\b|\bre-?enter\b`)},
		{TournamentTypeFreezeout, regexp.MustCompile(`(?i)\bfreeze-?\s?out\b`)},
		{TournamentTypeRebuy, regexp.MustCompile(`(?i)\bre-?buys?\b`)},
		{TournamentTypeBounty, regexp.MustCompile(`(?i)\bbount(?:y|ies)\b|\bknockout\b|\bpko\b`)},
		{TournamentTypeSatellite, regexp.MustCompile(`(?i)\bsatellite\b|\bsatty\b|\bqualifier\b`)},
		{TournamentTypeHyperTurbo, regexp.MustCompile(`(?i)\bhyper[- ]?turbo\b`)},
		{TournamentTypeTurbo, regexp.MustCompile(`(?i)\bturbo\b`)},
		{TournamentTypeDeepstack, regexp.MustCompile(`(?i)\bdeep\s?stack\b`)},
	}

	variantPatterns = []struct {
		value   string
		pattern *regexp.Regexp
	}{
		{"PLO6", regexp.MustCompile(`(?i)\bplo\s*6\b|\b6[- ]card\s+(?:plo|omaha)\b`)},
		{"PLO5", regexp.MustCompile(`(?i)\bplo\s*5\b|\b5[- ]card\s+(?:plo|omaha)\b`)},
		{"PLO", regexp.MustCompile(`(?i)\bplo\b|\bpot[- ]limit\s+omaha\b|\bomaha\b`)},
		{"NLHE", regexp.MustCompile(`(?i)\bnlh(?:e)?\b|\bno[- ]limit\s+hold'?\s?em\b|\bhold'?\s?em\b`)},
		{"LHE", regexp.MustCompile(`(?i)\blhe\b|\blimit\s+hold'?\s?em\b`)},
		{"MIXED", regexp.MustCompile(`(?i)\bmixed\s+games?\b|\bh\.?o\.?r\.?s\.?e\b`)},
	}

	seriesNamePattern = regexp.MustCompile(`\b((?:[A-Z][A-Za-z']*\s+){0,4}(?:Series|Championships?|Festival|Classic|Millions|Colossus))\b`)
	explicitDate      = regexp.MustCompile(`(?i)\b(\d{1,2})(?:st|nd|rd|th)?\s+(jan(?:uary)?|feb(?:ruary)?|mar(?:ch)?|apr(?:il)?|may|june?|july?|aug(?:ust)?|sept?(?:ember)?|oct(?:ober)?|nov(?:ember)?|dec(?:ember)?)\b`)
)

var monthTokens = map[string]time.Month{
	"jan": time.January, "feb": time.February, "mar": time.March, "apr": time.April,
	"may": time.May, "jun": time.June, "jul": time.July, "aug": time.August,
	"sep": time.September, "oct": time.October, "nov": time.November, "dec": time.December,
}

// Extract reads every structured field it can from a post. Placements are only
// parsed for result posts and advertised tickets only for promotional posts.
func Extract(post Post, cls Classification, venues []venue.Venue) GameData {
	content := post.Content
	out := GameData{
		SocialPostID:          post.ID,
		ContentType:           cls.ContentType,
		ContentTypeConfidence: cls.Confidence,
		ResultScore:           cls.ResultScore,
		PromoScore:            cls.PromoScore,
		MatchedPatterns:       cls.MatchedPatterns(),
	}

	out.ExtractedTournamentURL, out.ExtractedTournamentID = extractTournamentURL(content)

	headings := firstLines(content, 2)
	name, nameDay := extractRecurringName(headings)
	out.ExtractedRecurringGameName = name
	if nameDay != "" {
		out.ExtractedRecurringDayOfWeek = nameDay
	}
	out.ExtractedName = extractName(headings, name)

	extractBuyIn(content, &out)
	out.ExtractedGuarantee = firstMoney(guaranteePatterns, content)
	out.ExtractedPrizepool = firstMoney(prizepoolPatterns, content)
	out.ExtractedTotalEntries = firstInt(entriesPatterns, content)
	if m := badBeatPattern.FindStringSubmatch(content); m != nil {
		out.ExtractedBadBeatJackpot = parseMoneyParts(m[1], m[2])
	}
	out.ExtractedStartingStack = extractStartingStack(content)
	out.ExtractedBlindLevelMins = extractBlindLevel(content)
	if m := lateRegTimePattern.FindStringSubmatch(content); m != nil {
		out.ExtractedLateRegTime = strings.ToLower(strings.ReplaceAll(m[1], " ", ""))
	} else if m := lateRegLevelPattern.FindStringSubmatch(content); m != nil {
		if n, err := strconv.Atoi(m[1]); err == nil {
			out.ExtractedLateRegLevel = &n
		}
	}
	out.ExtractedTournamentType = ExtractTournamentType(content)
	out.ExtractedGameVariant = ExtractVariant(content)
	extractSeries(strings.Join(firstLines(content, 3), "\n"), &out)
	extractDate(content, post.PostedAt, &out)

	if match := venue.MatchText(content, venues); match.Found() {
		out.ExtractedVenueID = match.VenueID
		out.ExtractedVenueName = match.VenueName
		out.VenueMatchConfidence = textutil.FinitePtr(match.Confidence)
		out.VenueMatchSource = match.MatchSource
	} else {
		out.SuggestedVenueName = venue.SuggestName(content)
	}

	switch cls.ContentType {
	case ContentResult:
		out.Placements = ParsePlacements(content)
		out.PlacementCount = len(out.Placements)
		out.Tickets = Aggregate(out.Placements)
	case ContentPromotional:
		out.AdvertisedTickets = ParseAdvertisedTickets(content)
		out.Tickets = Aggregate(nil)
	default:
		out.Tickets = Aggregate(nil)
	}
	return out
}

func firstLines(content string, n int) []string {
	var out []string
	for _, raw := range strings.Split(content, "\n") {
		line := strings.TrimSpace(raw)
		if line == "" {
			continue
		}
		out = append(out, line)
		if len(out) == n {
			break
		}
	}
	return out
}

func extractTournamentURL(content string) (string, *int64) {
	url := tournamentURLPattern.FindString(content)
	if url == "" {
		return "", nil
	}
	url = strings.TrimRight(url, ".,)!")
	for _, p := range []*regexp.Regexp{urlIDParamPattern, urlIDPathPattern} {
		if m := p.FindStringSubmatch(url); m != nil {
			if id, err := strconv.ParseInt(m[1], 10, 64); err == nil {
				return url, &id
			}
		}
	}
	return url, nil
}

// extractRecurringName looks for "{DAY} {WORDS}", "{WORDS} {DAY}" or an
// all-caps heading in the leading lines.
func extractRecurringName(lines []string) (string, string) {
	for _, line := range lines {
		head := strings.TrimSpace(headingSplit.Split(line, 2)[0])
		head = strings.TrimSpace(strings.Trim(head, "🏆🥇♠️♥️♦️♣️*#"))
		if m := dayFirstPattern.FindStringSubmatch(head); m != nil {
			words := trimStopWords(strings.Fields(m[2]))
			if len(words) > 0 {
				return m[1] + " " + strings.Join(words, " "), strings.ToUpper(m[1])
			}
		}
		if m := dayLastPattern.FindStringSubmatch(head); m != nil {
			words := strings.Fields(m[1])
			if len(words) > 0 && !headingLeadingStop[strings.ToLower(words[0])] {
				return strings.Join(words, " ") + " " + m[2], strings.ToUpper(m[2])
			}
		}
	}
	for _, line := range lines {
		head := strings.TrimSpace(headingSplit.Split(line, 2)[0])
		words := trimStopWords(strings.Fields(head))
		candidate := strings.Join(words, " ")
		if isAllCapsHeading(candidate) {
			return candidate, ""
		}
	}
	return "", ""
}

func trimStopWords(words []string) []string {
	for len(words) > 0 && nameStopWords[strings.ToLower(words[len(words)-1])] {
		words = words[:len(words)-1]
	}
	return words
}

func isAllCapsHeading(value string) bool {
	letters := 0
	for _, r := range value {
		switch {
		case r >= 'a' && r <= 'z':
			return false
		case r >= 'A' && r <= 'Z':
			letters++
		}
	}
	return letters >= 4
}

func extractName(lines []string, recurringName string) string {
	if recurringName != "" {
		return recurringName
	}
	if len(lines) == 0 {
		return ""
	}
	name := strings.TrimSpace(headingSplit.Split(lines[0], 2)[0])
	if len(name) > maxNameLength {
		name = strings.TrimSpace(name[:maxNameLength])
	}
	return name
}

func extractBuyIn(content string, out *GameData) {
	var total *float64
	var a, b *float64
	if m := buyInLabelPattern.FindStringSubmatch(content); m != nil {
		total = parseMoneyParts(m[1], m[2])
		if m[3] != "" && m[5] != "" {
			a, b = parseMoneyParts(m[3], m[4]), parseMoneyParts(m[5], m[6])
		}
	} else if m := buyInSplitPattern.FindStringSubmatch(content); m != nil {
		total = parseMoneyParts(m[1], m[2])
		a, b = parseMoneyParts(m[3], m[4]), parseMoneyParts(m[5], m[6])
	} else if m := buyInAfterPattern.FindStringSubmatch(content); m != nil {
		total = parseMoneyParts(m[1], m[2])
	}
	out.ExtractedBuyIn = total
	if total == nil || a == nil || b == nil {
		return
	}
	if math.Abs(*a+*b-*total) > BuyInSplitTolerance {
		return
	}
	prizepool, rake := *a, *b
	if rake > prizepool {
		prizepool, rake = rake, prizepool
	}
	out.ExtractedBuyInPrizepool = textutil.FinitePtr(prizepool)
	out.ExtractedRake = textutil.FinitePtr(rake)
}

func parseMoneyParts(number, suffix string) *float64 {
	v, ok := textutil.ParseMoney(number + suffix)
	if !ok {
		return nil
	}
	return textutil.FinitePtr(v)
}

func firstMoney(patterns []*regexp.Regexp, content string) *float64 {
	for _, p := range patterns {
		if m := p.FindStringSubmatch(content); m != nil {
			if v := parseMoneyParts(m[1], m[2]); v != nil {
				return v
			}
		}
	}
	return nil
}

func firstInt(patterns []*regexp.Regexp, content string) *int {
	for _, p := range patterns {
		if m := p.FindStringSubmatch(content); m != nil {
			if n, ok := textutil.ParseInt(m[1]); ok && n > 0 {
				return &n
			}
		}
	}
	return nil
}

// extractStartingStack refuses values under 10,000 unless an "ss" suffix
// marks them as a stack, in which case 5,000 is the floor.
func extractStartingStack(content string) *int {
	for _, p := range stackPatterns {
		for _, m := range p.FindAllStringSubmatch(content, -1) {
			v, err := strconv.ParseFloat(strings.ReplaceAll(m[1], ",", ""), 64)
			if err != nil || !textutil.IsFinite(v) {
				continue
			}
			if strings.EqualFold(m[2], "k") {
				v *= 1000
			}
			floor := float64(MinStartingStack)
			if m[3] != "" {
				floor = MinStartingStackSuffixed
			}
			if v < floor || v > MaxStartingStack {
				continue
			}
			n := int(v)
			return &n
		}
	}
	return nil
}

func extractBlindLevel(content string) *int {
	for _, p := range blindPatterns {
		if m := p.FindStringSubmatch(content); m != nil {
			n, err := strconv.Atoi(m[1])
			if err != nil || n < MinBlindLevelMinutes || n > MaxBlindLevelMinutes {
				continue
			}
			return &n
		}
	}
	return nil
}

// ExtractTournamentType returns the highest priority structure mentioned, or "".
func ExtractTournamentType(content string) string {
	for _, t := range tournamentTypePatterns {
		if t.pattern.MatchString(content) {
			return t.value
		}
	}
	return ""
}

// ExtractVariant returns the game variant mentioned, or "".
func ExtractVariant(content string) string {
	for _, v := range variantPatterns {
		if v.pattern.MatchString(content) {
			return v.value
		}
	}
	return ""
}

func extractSeries(heading string, out *GameData) {
	if m := seriesNamePattern.FindStringSubmatch(heading); m != nil {
		out.ExtractedSeriesName = strings.TrimSpace(m[1])
	}
	details := game.ParseSeriesDetails(heading)
	out.ExtractedEventNumber = details.EventNumber
	out.ExtractedDayNumber = details.DayNumber
	out.ExtractedFlightLetter = details.FlightLetter
}

// extractDate prefers an explicit date, then a weekday token resolved to
// within three days of postedAt, then postedAt itself.
func extractDate(content string, postedAt time.Time, out *GameData) {
	out.DateSource = DateSourcePostedAt
	out.EffectiveGameDate = postedAt

	if m := explicitDate.FindStringSubmatch(content); m != nil {
		day, _ := strconv.Atoi(m[1])
		month := monthTokens[strings.ToLower(m[2])[:3]]
		local := aest.ToAEST(postedAt)
		year := local.Year()
		candidate := aest.FromAEST(year, month, day, 0, 0, 0)
		if candidate.Sub(postedAt) > 30*24*time.Hour {
			candidate = aest.FromAEST(year-1, month, day, 0, 0, 0)
		}
		if aest.ToAEST(candidate).Day() == day {
			out.ExtractedDate = &candidate
			out.ExtractedDayOfWeek = aest.DayName(candidate)
			out.DateSource = DateSourcePostContent
			out.EffectiveGameDate = candidate
			return
		}
	}

	dayName := out.ExtractedRecurringDayOfWeek
	if dayName == "" {
		if m := dayTokenPattern.FindStringSubmatch(content); m != nil {
			dayName = strings.ToUpper(m[1])
		}
	}
	if dayName == "" {
		out.ExtractedDayOfWeek = aest.DayName(postedAt)
		return
	}
	weekday, ok := aest.ParseDayName(dayName)
	if !ok {
		return
	}
	resolved := aest.StartOfDay(aest.ResolveWeekday(postedAt, weekday))
	out.ExtractedDate = &resolved
	out.ExtractedDayOfWeek = dayName
	out.DateSource = DateSourcePostContent
	out.EffectiveGameDate = resolved
}
