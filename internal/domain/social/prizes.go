package social

import (
	"regexp"
	"sort"
	"strings"

	"github.com/riskibarqy/tournament-reconciler/internal/platform/textutil"
)

const (
	PrizeAccumulatorTicket = "ACCUMULATOR_TICKET"
	PrizeSatelliteTicket   = "SATELLITE_TICKET"
	PrizeMainEventSeat     = "MAIN_EVENT_SEAT"
	PrizeSeriesSeat        = "SERIES_SEAT"
	PrizePackage           = "PACKAGE"
	PrizeValuedSeat        = "VALUED_SEAT"
	PrizeFreeEntry         = "FREE_ENTRY"
	PrizeVoucher           = "VOUCHER"
	PrizeBounty            = "BOUNTY"
	PrizeOtherTicket       = "OTHER_TICKET"
)

type prizePattern struct {
	prizeType   string
	description string
	pattern     *regexp.Regexp
}

// Ordered most specific first; a span claimed by an earlier pattern is not
// matched again.
var prizePatterns = []prizePattern{
	{PrizeMainEventSeat, "Main event seat", regexp.MustCompile(`(?i)(?:\$\s?[\d,]+(?:\.\d+)?k?\s+)?\bmain\s+event\s+(?:seat|entry|ticket)s?\b`)},
	{PrizeSeriesSeat, "Series seat", regexp.MustCompile(`(?i)(?:\$\s?[\d,]+(?:\.\d+)?k?\s+)?\b(?:colossus|millions|championships?|series|festival|wsop|wpt|appt|anzpt)\s+(?:seat|entry|ticket)s?\b`)},
	{PrizeSatelliteTicket, "Satellite ticket", regexp.MustCompile(`(?i)(?:\$\s?[\d,]+(?:\.\d+)?k?\s+)?\b(?:satellite|satty|sat)\s+(?:seat|ticket|entry)s?\b`)},
	{PrizeAccumulatorTicket, "Accumulator ticket", regexp.MustCompile(`(?i)(?:\$\s?[\d,]+(?:\.\d+)?k?\s+)?\baccum(?:ulator)?s?\b(?:\s+(?:ticket|entry|seat)s?)?`)},
	{PrizeValuedSeat, "Seat", regexp.MustCompile(`(?i)\$\s?[\d,]+(?:\.\d+)?k?\s+(?:seat|ticket|entry)s?\b|\b(?:seat|ticket|entry)s?\s*\(?\s*(?:valued at|worth|value)\s*\$\s?[\d,]+(?:\.\d+)?k?\)?`)},
	{PrizePackage, "Package", regexp.MustCompile(`(?i)(?:\$\s?[\d,]+(?:\.\d+)?k?\s+)?\bpackages?\b`)},
	{PrizeFreeEntry, "Free entry", regexp.MustCompile(`(?i)\bfree\s+(?:entry|entries|buy-?in|roll)\b`)},
	{PrizeVoucher, "Voucher", regexp.MustCompile(`(?i)(?:\$\s?[\d,]+(?:\.\d+)?\s+)?\b(?:voucher|gift\s+card|bar\s+tab)s?\b`)},
	{PrizeBounty, "Bounty", regexp.MustCompile(`(?i)\bbount(?:y|ies)\b`)},
	{PrizeOtherTicket, "Ticket", regexp.MustCompile(`(?i)\b(?:ticket|seat)s?\b`)},
}

var (
	moneyTokenPattern = regexp.MustCompile(`(?i)\$\s?(\d[\d,]*(?:\.\d+)?)\s*(k)?\b`)
	valuedAtPattern   = regexp.MustCompile(`(?i)(?:valued at|worth|value)\s*\$\s?(\d[\d,]*(?:\.\d+)?)\s*(k)?`)
	chopPattern       = regexp.MustCompile(`(?i)\bchop(?:ped)?\b`)
	icmPattern        = regexp.MustCompile(`(?i)\bicm\b`)
)

// IsTicketType reports whether a non-cash prize carries an entry to another game.
func IsTicketType(prizeType string) bool {
	switch prizeType {
	case PrizeBounty, PrizeVoucher:
		return false
	default:
		return true
	}
}

// Prize is the decomposition of the prize section of a placement line.
type Prize struct {
	Cash          *float64
	NonCash       []NonCashPrize
	WasChop       bool
	WasICMDeal    bool
	HasDollarSign bool
}

// ParsePrize splits a prize section into cash and non-cash components.
func ParsePrize(section string) Prize {
	out := Prize{
		WasChop:       chopPattern.MatchString(section),
		WasICMDeal:    icmPattern.MatchString(section),
		HasDollarSign: strings.Contains(section, "$"),
	}

	type span struct{ start, end int }
	var claimed []span
	overlaps := func(s, e int) bool {
		for _, c := range claimed {
			if s < c.end && e > c.start {
				return true
			}
		}
		return false
	}

	type found struct {
		start int
		prize NonCashPrize
	}
	var prizes []found
	for _, p := range prizePatterns {
		for _, loc := range p.pattern.FindAllStringIndex(section, -1) {
			if overlaps(loc[0], loc[1]) {
				continue
			}
			claimed = append(claimed, span{loc[0], loc[1]})
			text := strings.TrimSpace(section[loc[0]:loc[1]])
			prize := NonCashPrize{PrizeType: p.prizeType, Description: p.description, MatchedText: text}
			if v, ok := valueIn(text); ok {
				prize.EstimatedValue = textutil.FinitePtr(v)
			} else if m := valuedAtPattern.FindStringSubmatch(section[loc[1]:]); m != nil {
				if v, ok := moneyValue(m[1], m[2]); ok {
					prize.EstimatedValue = textutil.FinitePtr(v)
				}
			}
			prizes = append(prizes, found{start: loc[0], prize: prize})
		}
	}
	sort.SliceStable(prizes, func(i, j int) bool { return prizes[i].start < prizes[j].start })
	for _, f := range prizes {
		out.NonCash = append(out.NonCash, f.prize)
	}

	for _, loc := range moneyTokenPattern.FindAllStringSubmatchIndex(section, -1) {
		if overlaps(loc[0], loc[1]) || insideValuedAt(section, loc[0]) {
			continue
		}
		suffix := ""
		if loc[4] >= 0 {
			suffix = section[loc[4]:loc[5]]
		}
		if v, ok := moneyValue(section[loc[2]:loc[3]], suffix); ok {
			out.Cash = textutil.FinitePtr(v)
			break
		}
	}
	return out
}

func valueIn(text string) (float64, bool) {
	m := moneyTokenPattern.FindStringSubmatch(text)
	if m == nil {
		return 0, false
	}
	return moneyValue(m[1], m[2])
}

func moneyValue(number, suffix string) (float64, bool) {
	return textutil.ParseMoney(number + suffix)
}

func insideValuedAt(section string, at int) bool {
	for _, loc := range valuedAtPattern.FindAllStringIndex(section, -1) {
		if at >= loc[0] && at < loc[1] {
			return true
		}
	}
	return false
}
