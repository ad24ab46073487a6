package social

import (
	"regexp"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/riskibarqy/tournament-reconciler/internal/platform/textutil"
)

const (
	MaxPlace      = 100
	MinNameLength = 2
	MaxNameLength = 50
)

const sep = `(?:\s+[-–—]+\s*|\s*:\s*|\s*\|\s*)`

var (
	ordinalLinePattern  = regexp.MustCompile(`(?i)^\s*(\d{1,3})(?:st|nd|rd|th)\b(?:\s*place)?\s*(?:[-–—:.)]\s*)?(.+?)` + sep + `(.+)$`)
	numberedLinePattern = regexp.MustCompile(`^\s*(\d{1,3})[.)]\s+(.+?)` + sep + `(.+)$`)
	medalLinePattern    = regexp.MustCompile(`^\s*(🥇|🥈|🥉)\s*(?:[-–—:]\s*)?(.+?)` + sep + `(.+)$`)
	reverseLinePattern  = regexp.MustCompile(`^\s*(\$\s?\d[\d,]*(?:\.\d+)?k?)` + sep + `(.+)$`)
	bareOrdinalPattern  = regexp.MustCompile(`(?i)^\s*(\d{1,3})(?:st|nd|rd|th)(?:\s*place)?\s*:?\s*$`)
)

var medalPlaces = map[string]int{"🥇": 1, "🥈": 2, "🥉": 3}

// ParsePlacements reads finishing positions from result post content, one per
// line. The first placement seen for a place wins.
func ParsePlacements(content string) []Placement {
	var out []Placement
	seen := make(map[int]bool)
	contextPlace := 0

	for _, raw := range strings.Split(content, "\n") {
		line := strings.TrimSpace(raw)
		if line == "" {
			continue
		}
		if m := bareOrdinalPattern.FindStringSubmatch(line); m != nil {
			contextPlace, _ = strconv.Atoi(m[1])
			continue
		}
		p, ok := parseLine(line, contextPlace)
		contextPlace = 0
		if !ok || seen[p.Place] {
			continue
		}
		seen[p.Place] = true
		out = append(out, p)
	}
	return out
}

func parseLine(line string, contextPlace int) (Placement, bool) {
	if m := ordinalLinePattern.FindStringSubmatch(line); m != nil {
		place, _ := strconv.Atoi(m[1])
		return buildPlacement(line, place, m[2], m[3])
	}
	if m := numberedLinePattern.FindStringSubmatch(line); m != nil {
		place, _ := strconv.Atoi(m[1])
		return buildPlacement(line, place, m[2], m[3])
	}
	if m := medalLinePattern.FindStringSubmatch(line); m != nil {
		return buildPlacement(line, medalPlaces[m[1]], m[2], m[3])
	}
	if m := reverseLinePattern.FindStringSubmatch(line); m != nil && contextPlace > 0 {
		return buildPlacement(line, contextPlace, m[2], m[1])
	}
	return Placement{}, false
}

func buildPlacement(line string, place int, name, prizeSection string) (Placement, bool) {
	if place < 1 || place > MaxPlace {
		return Placement{}, false
	}
	name = strings.TrimSpace(name)
	if !validName(name) {
		return Placement{}, false
	}

	prize := ParsePrize(prizeSection)
	// Lines without a dollar amount only count when they carry a ticket.
	if !prize.HasDollarSign && !hasTicket(prize.NonCash) {
		return Placement{}, false
	}

	p := Placement{
		Place:           place,
		PlayerName:      name,
		CashPrize:       prize.Cash,
		HasNonCashPrize: len(prize.NonCash) > 0,
		NonCashPrizes:   prize.NonCash,
		WasChop:         prize.WasChop,
		WasICMDeal:      prize.WasICMDeal,
		RawText:         line,
	}
	p.TotalEstimatedValue = totalValue(p)
	return p, true
}

func validName(name string) bool {
	n := utf8.RuneCountInString(name)
	if n < MinNameLength || n > MaxNameLength {
		return false
	}
	first, _ := utf8.DecodeRuneInString(name)
	return unicode.IsLetter(first)
}

func hasTicket(prizes []NonCashPrize) bool {
	for _, p := range prizes {
		if IsTicketType(p.PrizeType) {
			return true
		}
	}
	return false
}

func totalValue(p Placement) *float64 {
	var total float64
	known := false
	if p.CashPrize != nil {
		total += *p.CashPrize
		known = true
	}
	for _, prize := range p.NonCashPrizes {
		if prize.EstimatedValue != nil {
			total += *prize.EstimatedValue
			known = true
		}
	}
	if !known {
		return nil
	}
	return textutil.FinitePtr(total)
}

// Aggregate totals cash and tickets across placements.
func Aggregate(placements []Placement) TicketAggregates {
	out := TicketAggregates{
		TicketCountByType: make(map[string]int),
		TicketValueByType: make(map[string]float64),
	}
	for _, p := range placements {
		if p.CashPrize != nil {
			out.TotalCashPaid += *p.CashPrize
		}
		tickets := 0
		for _, prize := range p.NonCashPrizes {
			if !IsTicketType(prize.PrizeType) {
				continue
			}
			tickets++
			out.TotalTicketsExtracted++
			out.TicketCountByType[prize.PrizeType]++
			value := 0.0
			if prize.EstimatedValue != nil {
				value = *prize.EstimatedValue
			}
			out.TotalTicketValue += value
			out.TicketValueByType[prize.PrizeType] += value
			if prize.PrizeType == PrizeAccumulatorTicket {
				out.AccumulatorTicketCount++
				out.AccumulatorTicketValue += value
			}
		}
		if tickets > 0 {
			out.TotalPrizesWithTickets++
			if p.CashPrize == nil {
				out.TotalTicketOnlyPrizes++
			}
		}
	}
	out.TotalCashPaid = textutil.Round2(out.TotalCashPaid)
	out.TotalTicketValue = textutil.Round2(out.TotalTicketValue)
	out.CashPlusTotalTicketValue = textutil.Round2(out.TotalCashPaid + out.TotalTicketValue)
	return out
}

var quantityBefore = regexp.MustCompile(`(?i)(\d{1,3})\s*(?:x\s*)?(?:\$\s?[\d,]+k?\s+)?$`)

// ParseAdvertisedTickets finds the ticket prizes a promotional post promises.
// A number directly before the prize is read as the quantity.
func ParseAdvertisedTickets(content string) []AdvertisedTicket {
	var out []AdvertisedTicket
	for _, raw := range strings.Split(content, "\n") {
		line := strings.TrimSpace(raw)
		if line == "" {
			continue
		}
		prize := ParsePrize(line)
		for _, nc := range prize.NonCash {
			if !IsTicketType(nc.PrizeType) {
				continue
			}
			qty := 1
			if idx := strings.Index(line, nc.MatchedText); idx > 0 {
				if m := quantityBefore.FindStringSubmatch(line[:idx]); m != nil {
					if n, err := strconv.Atoi(m[1]); err == nil && n > 0 {
						qty = n
					}
				}
			}
			out = append(out, AdvertisedTicket{
				PrizeType:      nc.PrizeType,
				Description:    nc.Description,
				Quantity:       qty,
				EstimatedValue: nc.EstimatedValue,
				MatchedText:    nc.MatchedText,
			})
		}
	}
	return out
}
