package social

import (
	"strings"
	"testing"
	"time"

	"github.com/riskibarqy/tournament-reconciler/internal/domain/game"
	"github.com/riskibarqy/tournament-reconciler/internal/domain/venue"
	"github.com/riskibarqy/tournament-reconciler/internal/platform/aest"
)

const resultPost = `THURSDAY GRIND - Results
Buy-in: $120 ($98 + $22)
1st - Alice Ng - $500
2nd - Bob - Accumulator Ticket
🥉 Carol D. - $150`

const promoPost = `FRIDAY FREEZEOUT
Join us tonight at The Star! $5,000 GTD.
Starts at 7pm, 30k starting stack, 20 min levels.
Late reg until 9:30pm. Buy-in $150.
Plus 3 x Accumulator Tickets up for grabs`

func TestClassifyResultPost(t *testing.T) {
	t.Parallel()

	got := Classify(resultPost)
	if got.ContentType != ContentResult {
		t.Fatalf("expected RESULT, got %+v", got)
	}
	if got.ResultScore < ResultMin || got.ResultScore <= got.PromoScore {
		t.Fatalf("unexpected scores result=%v promo=%v", got.ResultScore, got.PromoScore)
	}
}

func TestClassifyPromotionalPost(t *testing.T) {
	t.Parallel()

	got := Classify(promoPost)
	if got.ContentType != ContentPromotional || got.Confidence != 0.90 {
		t.Fatalf("expected strong PROMOTIONAL, got %+v", got)
	}
}

func TestClassifyEdges(t *testing.T) {
	t.Parallel()

	if got := Classify("   "); got.ContentType != ContentGeneral || got.Confidence != 1 {
		t.Fatalf("empty content should be GENERAL/1.0, got %+v", got)
	}
	if got := Classify("Happy birthday to our dealer Sam, have a great day everyone"); got.ContentType != ContentGeneral || got.Confidence != 0.70 {
		t.Fatalf("expected GENERAL/0.70, got %+v", got)
	}
}

func TestDecideTable(t *testing.T) {
	t.Parallel()

	tests := []struct {
		result, promo float64
		wantType      string
		wantConf      float64
	}{
		{85, 10, ContentResult, 0.95},
		{60, 20, ContentResult, 0.80},
		{50, 45, ContentResult, 0.60},
		{10, 65, ContentPromotional, 0.90},
		{5, 45, ContentPromotional, 0.75},
		{30, 35, ContentPromotional, 0.55},
		{45, 45, ContentResult, 0.40},
		{20, 10, ContentGeneral, 0.70},
	}
	for _, tc := range tests {
		gotType, gotConf := decide(tc.result, tc.promo)
		if gotType != tc.wantType || gotConf != tc.wantConf {
			t.Fatalf("decide(%v,%v)=%s/%v want %s/%v", tc.result, tc.promo, gotType, gotConf, tc.wantType, tc.wantConf)
		}
	}
}

func TestResultScoreMonotonicWhenPatternsRemoved(t *testing.T) {
	t.Parallel()

	full, _ := ScoreBank(BankResult, resultPost)
	stripped := strings.ReplaceAll(resultPost, "Results", "")
	stripped = strings.ReplaceAll(stripped, "🥉", "")
	less, _ := ScoreBank(BankResult, stripped)
	if less > full {
		t.Fatalf("removing result markers increased score: %v > %v", less, full)
	}
}

func TestPatternCountsAreCapped(t *testing.T) {
	t.Parallel()

	score, hits := ScoreBank(BankResult, "results results results results results")
	if score != 45 || len(hits) != 1 || hits[0].Count != MaxPatternHits {
		t.Fatalf("expected capped score 45, got %v %+v", score, hits)
	}
}

func TestSkipReason(t *testing.T) {
	t.Parallel()

	long := strings.Repeat("x", 30)
	tests := []struct {
		name  string
		post  Post
		links int
		force bool
		want  string
	}{
		{name: "comment", post: Post{PostType: PostTypeComment, Content: long}, want: "comment"},
		{name: "short", post: Post{Content: "  gg all  "}, want: "content_too_short"},
		{name: "linked", post: Post{Content: long, ProcessingStatus: StatusLinked}, links: 1, want: "already_linked"},
		{name: "linked forced", post: Post{Content: long, ProcessingStatus: StatusLinked}, links: 1, force: true},
		{name: "linked without links", post: Post{Content: long, ProcessingStatus: StatusLinked}},
	}
	for _, tc := range tests {
		if got := SkipReason(tc.post, tc.links, tc.force); got != tc.want {
			t.Fatalf("%s: got %q want %q", tc.name, got, tc.want)
		}
	}
}

func TestParsePlacementsResultPost(t *testing.T) {
	t.Parallel()

	placements := ParsePlacements(resultPost)
	if len(placements) != 3 {
		t.Fatalf("expected 3 placements, got %+v", placements)
	}
	wantNames := []string{"Alice Ng", "Bob", "Carol D."}
	for i, p := range placements {
		if p.Place != i+1 || p.PlayerName != wantNames[i] {
			t.Fatalf("placement %d unexpected %+v", i, p)
		}
	}
	bob := placements[1]
	if !bob.HasNonCashPrize || bob.CashPrize != nil || bob.NonCashPrizes[0].PrizeType != PrizeAccumulatorTicket {
		t.Fatalf("unexpected ticket placement %+v", bob)
	}

	agg := Aggregate(placements)
	if agg.TotalCashPaid != 650 || agg.TotalTicketsExtracted != 1 || agg.TotalTicketOnlyPrizes != 1 {
		t.Fatalf("unexpected aggregates %+v", agg)
	}
	if agg.AccumulatorTicketCount != 1 || agg.TicketCountByType[PrizeAccumulatorTicket] != 1 {
		t.Fatalf("unexpected accumulator aggregates %+v", agg)
	}
}

func TestParsePlacementsFormats(t *testing.T) {
	t.Parallel()

	content := strings.Join([]string{
		"1. Jane Smith - $1,200 (chop)",
		"2nd: Tom - $400 + $550 Colossus Seat",
		"3rd - Sam Lee - Satellite Ticket (valued at $250)",
		"4th - 1234 - $50",
		"1st - Someone Else - $999",
		"5th place",
		"$80 - Kim",
		"$60 - Nobody",
		"150th - Too Far - $5",
	}, "\n")

	placements := ParsePlacements(content)
	if len(placements) != 4 {
		t.Fatalf("expected 4 placements, got %+v", placements)
	}

	jane := placements[0]
	if jane.PlayerName != "Jane Smith" || jane.CashPrize == nil || *jane.CashPrize != 1200 || !jane.WasChop {
		t.Fatalf("unexpected first placement %+v", jane)
	}
	tom := placements[1]
	if tom.CashPrize == nil || *tom.CashPrize != 400 || len(tom.NonCashPrizes) != 1 {
		t.Fatalf("unexpected second placement %+v", tom)
	}
	if seat := tom.NonCashPrizes[0]; seat.PrizeType != PrizeSeriesSeat || seat.EstimatedValue == nil || *seat.EstimatedValue != 550 {
		t.Fatalf("unexpected seat %+v", seat)
	}
	if tom.TotalEstimatedValue == nil || *tom.TotalEstimatedValue != 950 {
		t.Fatalf("unexpected total value %+v", tom.TotalEstimatedValue)
	}
	sam := placements[2]
	if sam.CashPrize != nil || sam.NonCashPrizes[0].PrizeType != PrizeSatelliteTicket || *sam.NonCashPrizes[0].EstimatedValue != 250 {
		t.Fatalf("unexpected ticket-only placement %+v", sam)
	}
	kim := placements[3]
	if kim.Place != 5 || kim.PlayerName != "Kim" || *kim.CashPrize != 80 {
		t.Fatalf("unexpected context placement %+v", kim)
	}

	agg := Aggregate(placements)
	if agg.TotalCashPaid != 1680 || agg.TotalTicketsExtracted != 2 || agg.TotalTicketValue != 800 {
		t.Fatalf("unexpected aggregates %+v", agg)
	}
	if agg.TotalPrizesWithTickets != 2 || agg.TotalTicketOnlyPrizes != 1 || agg.CashPlusTotalTicketValue != 2480 {
		t.Fatalf("unexpected ticket counts %+v", agg)
	}
}

func TestParsePrizeFlags(t *testing.T) {
	t.Parallel()

	got := ParsePrize("$2,000 ICM deal + $100 bounty")
	if got.Cash == nil || *got.Cash != 2000 || !got.WasICMDeal || got.WasChop {
		t.Fatalf("unexpected prize %+v", got)
	}
	if len(got.NonCash) != 1 || got.NonCash[0].PrizeType != PrizeBounty || IsTicketType(got.NonCash[0].PrizeType) {
		t.Fatalf("unexpected non-cash prizes %+v", got.NonCash)
	}
}

func TestParseAdvertisedTickets(t *testing.T) {
	t.Parallel()

	got := ParseAdvertisedTickets(promoPost)
	if len(got) != 1 || got[0].PrizeType != PrizeAccumulatorTicket || got[0].Quantity != 3 {
		t.Fatalf("unexpected advertised tickets %+v", got)
	}
}

func TestExtractResultPost(t *testing.T) {
	t.Parallel()

	postedAt := time.Date(2025, 8, 15, 1, 0, 0, 0, time.UTC) // Friday 11:00 AEST
	post := Post{ID: "p1", Content: resultPost, PostedAt: postedAt}
	data := Extract(post, Classify(resultPost), nil)

	if data.ContentType != ContentResult {
		t.Fatalf("unexpected content type %s", data.ContentType)
	}
	if data.ExtractedBuyIn == nil || *data.ExtractedBuyIn != 120 {
		t.Fatalf("unexpected buy-in %v", data.ExtractedBuyIn)
	}
	if *data.ExtractedBuyInPrizepool != 98 || *data.ExtractedRake != 22 {
		t.Fatalf("unexpected split %v/%v", *data.ExtractedBuyInPrizepool, *data.ExtractedRake)
	}
	if data.ExtractedRecurringGameName != "THURSDAY GRIND" || data.ExtractedRecurringDayOfWeek != "THURSDAY" {
		t.Fatalf("unexpected recurring name %q/%q", data.ExtractedRecurringGameName, data.ExtractedRecurringDayOfWeek)
	}
	if data.PlacementCount != 3 || data.Tickets.TotalCashPaid != 650 || data.Tickets.TotalTicketsExtracted != 1 {
		t.Fatalf("unexpected placements %d / %+v", data.PlacementCount, data.Tickets)
	}
	if data.DateSource != DateSourcePostContent || aest.Date(data.EffectiveGameDate) != "2025-08-14" {
		t.Fatalf("expected thursday resolved from content, got %s %s", data.DateSource, aest.Date(data.EffectiveGameDate))
	}
}

func TestExtractPromotionalPost(t *testing.T) {
	t.Parallel()

	postedAt := time.Date(2025, 8, 13, 2, 0, 0, 0, time.UTC) // Wednesday 12:00 AEST
	venues := []venue.Venue{{ID: "v-star", Name: "The Star", EntityID: "e1"}}
	post := Post{ID: "p2", Content: promoPost, PostedAt: postedAt}
	data := Extract(post, Classify(promoPost), venues)

	if data.ExtractedGuarantee == nil || *data.ExtractedGuarantee != 5000 {
		t.Fatalf("unexpected guarantee %v", data.ExtractedGuarantee)
	}
	if data.ExtractedStartingStack == nil || *data.ExtractedStartingStack != 30000 {
		t.Fatalf("unexpected stack %v", data.ExtractedStartingStack)
	}
	if data.ExtractedBlindLevelMins == nil || *data.ExtractedBlindLevelMins != 20 {
		t.Fatalf("unexpected blind level %v", data.ExtractedBlindLevelMins)
	}
	if data.ExtractedLateRegTime != "9:30pm" {
		t.Fatalf("unexpected late reg %q", data.ExtractedLateRegTime)
	}
	if data.ExtractedTournamentType != TournamentTypeFreezeout {
		t.Fatalf("unexpected tournament type %q", data.ExtractedTournamentType)
	}
	if data.ExtractedBuyIn == nil || *data.ExtractedBuyIn != 150 {
		t.Fatalf("unexpected buy-in %v", data.ExtractedBuyIn)
	}
	if data.ExtractedVenueID != "v-star" {
		t.Fatalf("expected venue match, got %+v", data)
	}
	if aest.Date(data.EffectiveGameDate) != "2025-08-15" || data.ExtractedDayOfWeek != "FRIDAY" {
		t.Fatalf("unexpected game date %s", aest.Date(data.EffectiveGameDate))
	}
	if len(data.Placements) != 0 || len(data.AdvertisedTickets) != 1 {
		t.Fatalf("promotional posts only carry advertised tickets, got %+v", data.AdvertisedTickets)
	}
}

func TestExtractTournamentURL(t *testing.T) {
	t.Parallel()

	url, id := extractTournamentURL("Full results: https://kingsroom.com.au/tournament?id=12345.")
	if url != "https://kingsroom.com.au/tournament?id=12345" || id == nil || *id != 12345 {
		t.Fatalf("unexpected url/id %q %v", url, id)
	}
	if _, id := extractTournamentURL("see kingsroomlive.com/events/778"); id == nil || *id != 778 {
		t.Fatalf("expected path id, got %v", id)
	}
	if url, _ := extractTournamentURL("see example.com/tournament?id=1"); url != "" {
		t.Fatalf("unexpected url %q", url)
	}
}

func TestExtractStartingStackClamp(t *testing.T) {
	t.Parallel()

	tests := []struct {
		content string
		want    int
	}{
		{"50,000 starting stack", 50000},
		{"Starting stack: 25k", 25000},
		{"8000 chips", 0},
		{"8000ss", 8000},
		{"1,000,000 chips", 0},
	}
	for _, tc := range tests {
		got := extractStartingStack(tc.content)
		if tc.want == 0 {
			if got != nil {
				t.Fatalf("%q: expected nil, got %d", tc.content, *got)
			}
			continue
		}
		if got == nil || *got != tc.want {
			t.Fatalf("%q: got %v want %d", tc.content, got, tc.want)
		}
	}
}

func TestExtractTournamentTypePriority(t *testing.T) {
	t.Parallel()

	tests := map[string]string{
		"Re-entry Bounty Turbo":   TournamentTypeReentry,
		"Freezeout with bounties": TournamentTypeFreezeout,
		"Hyper Turbo deepstack":   TournamentTypeHyperTurbo,
		"Deepstack Sunday":        TournamentTypeDeepstack,
		"Regular weekly game":     "",
	}
	for content, want := range tests {
		if got := ExtractTournamentType(content); got != want {
			t.Fatalf("ExtractTournamentType(%q)=%q want %q", content, got, want)
		}
	}
	if got := ExtractVariant("No Limit Hold'em"); got != "NLHE" {
		t.Fatalf("unexpected variant %q", got)
	}
	if got := ExtractVariant("PLO5 bounty"); got != "PLO5" {
		t.Fatalf("unexpected variant %q", got)
	}
}

func TestReconcile(t *testing.T) {
	t.Parallel()

	paid := 650.0
	tickets := 1
	data := GameData{SocialPostID: "p1", Tickets: TicketAggregates{TotalCashPaid: 650, AccumulatorTicketCount: 1}}
	clean := Reconcile(data, game.Game{ID: "g1", PrizepoolPaid: &paid, NumberOfAccumulatorTicketsPaid: &tickets})
	if clean.HasDiscrepancy || clean.Severity != SeverityNone {
		t.Fatalf("expected no discrepancy, got %+v", clean)
	}

	paid = 900
	major := Reconcile(data, game.Game{ID: "g1", PrizepoolPaid: &paid, NumberOfAccumulatorTicketsPaid: &tickets})
	if !major.HasDiscrepancy || major.Severity != SeverityMajor || major.SuggestedAction != ActionManualReview {
		t.Fatalf("expected major discrepancy, got %+v", major)
	}

	paid    = 650.5
	tickets = 2
	minor := Reconcile(data, game.Game{ID: "g1", PrizepoolPaid: &paid, NumberOfAccumulatorTicketsPaid: &tickets})
	if !minor.HasDiscrepancy || minor.Severity != SeverityMinor || minor.AccumulatorCountDifference != -1 {
		t.Fatalf("expected minor ticket discrepancy, got %+v", minor)
	}
}

func TestSameHost(t *testing.T) {
	tests := []struct {
		a, b string
		want bool
	}{
		{"https://kingsroom.com.au/tournament/123", "https://kingsroom.com.au/tournament/123", true},
		{"kingsroom.com.au/tournament/123", "https://kingsroom.com.au/tournament/123", true},
		{"www.kingsroom.com.au/events/9", "http://KingsRoom.com.au/tournament/123", true},
		{"kingsroom.com.au:443/tournament/1", "https://kingsroom.com.au/tournament/1", true},
		{"kingsroomlive.com/tournament/1", "https://kingsroom.com.au/tournament/1", false},
		{"", "https://kingsroom.com.au/tournament/1", false},
		{"kingsroom.com.au/tournament/1", "", false},
	}
	for _, tt := range tests {
		if got := sameHost(tt.a, tt.b); got != tt.want {
			t.Fatalf("sameHost(%q, %q) = %v, want %v", tt.a, tt.b, got, tt.want)
		}
	}
}
