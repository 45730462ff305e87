package handler

import "testing"

func TestNormalizeTopicTags(t *testing.T) {
	cases := []struct {
		name string
		in   []string
		want []string
	}{
		{"nil stays nil", nil, nil},
		{"lowercases and hyphenates", []string{"Passe Compose"}, []string{"passe-compose"}},
		{"drops punctuation-only tags", []string{"!!!", "negation"}, []string{"negation"}},
		{"already normalized", []string{"cod-coi"}, []string{"cod-coi"}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := normalizeTopicTags(tc.in)
			if len(got) != len(tc.want) {
				t.Fatalf("normalizeTopicTags(%v) = %v, want %v", tc.in, got, tc.want)
			}
			for i := range got {
				if got[i] != tc.want[i] {
					t.Errorf("normalizeTopicTags(%v)[%d] = %q, want %q", tc.in, i, got[i], tc.want[i])
				}
			}
		})
	}
}
