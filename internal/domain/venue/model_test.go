package venue

import "testing"

func catalog() []Venue {
	return []Venue{
		{ID: "v-star", Name: "The Star Sydney", ShortName: "The Star", Aliases: []string{"Star Casino"}, EntityID: "ent-1"},
		{ID: "v-crown", Name: "Crown Melbourne", ShortName: "Crown", EntityID: "ent-1"},
		{ID: "v-kings", Name: "Kings Room", Aliases: []string{"KR Live"}, EntityID: "ent-2"},
	}
}

func TestMatchText_Tiers(t *testing.T) {
	t.Parallel()

	tests := []struct {
		text   string
		id     string
		conf   float64
		source string
	}{
		{text: "Results from The Star Sydney tonight", id: "v-star", conf: 1.0, source: SourceName},
		{text: "Big night at the star", id: "v-star", conf: 0.95, source: SourceShortName},
		{text: "Star Casino Thursday Grind", id: "v-star", conf: 0.9, source: SourceAlias},
		{text: "#KingsRoom weekly", id: "v-kings", conf: 0.9, source: SourceNormalizedName},
		{text: "crownmelbourne", id: "v-crown", conf: 0.9, source: SourceNormalizedName},
	}
	for _, tc := range tests {
		got := MatchText(tc.text, catalog())
		if got.VenueID != tc.id || got.Confidence != tc.conf || got.MatchSource != tc.source {
			t.Fatalf("%q: got %+v want id=%s conf=%v source=%s", tc.text, got, tc.id, tc.conf, tc.source)
		}
	}
}

func TestMatchText_NoMatch(t *testing.T) {
	t.Parallel()

	got := MatchText("Sunday game at Rooty Hill RSL", catalog())
	if got.Found() {
		t.Fatalf("unexpected match %+v", got)
	}
	if s := SuggestName("Sunday game at Rooty Hill RSL"); s != "Rooty Hill Rsl" {
		t.Fatalf("unexpected suggestion %q", s)
	}
	if MatchText("", catalog()).Found() {
		t.Fatalf("empty text must not match")
	}
}
