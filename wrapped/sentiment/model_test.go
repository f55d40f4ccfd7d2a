package sentiment

import (
	"context"
	"strings"
	"testing"
)

func TestScoresFromLabels(t *testing.T) {
	t.Parallel()

	out := classifyResponse{Items: []classifiedText{
		{Index: 0, Label: "positive", Confidence: 0.9},
		{Index: 2, Label: "Negative", Confidence: 1.7}, // confidence clamped
		{Index: 5, Label: "positive", Confidence: 0.5}, // out of range, dropped
		{Index: -1, Label: "negative", Confidence: 0.5},
	}}
	scores := scoresFromLabels(out, 4)

	if scores[0].Label != LabelPositive || scores[0].Value != 0.9 {
		t.Fatalf("scores[0]=%+v", scores[0])
	}
	if scores[1].Label != LabelNeutral || scores[1].Value != 0 {
		t.Fatalf("scores[1]=%+v, want neutral for missing index", scores[1])
	}
	if scores[2].Label != LabelNegative || scores[2].Value != -1 || scores[2].Confidence != 1 {
		t.Fatalf("scores[2]=%+v, want clamped negative", scores[2])
	}
	if scores[3].Label != LabelNeutral {
		t.Fatalf("scores[3]=%+v", scores[3])
	}
	for i, s := range scores {
		if s.Source != BackendModel {
			t.Fatalf("scores[%d].Source=%q, want model", i, s.Source)
		}
	}
}

func TestScoresFromLabels_UnknownLabelIsNeutral(t *testing.T) {
	t.Parallel()

	out := classifyResponse{Items: []classifiedText{{Index: 0, Label: "mixed", Confidence: 0.8}}}
	scores := scoresFromLabels(out, 1)
	if scores[0].Label != LabelNeutral || scores[0].Value != 0 {
		t.Fatalf("scores[0]=%+v, want neutral", scores[0])
	}
}

func TestBuildClassifyInput(t *testing.T) {
	t.Parallel()

	got := buildClassifyInput([]string{"hej", "co\ntam"})
	want := "[0] hej\n[1] co\\ntam\n"
	if got != want {
		t.Fatalf("buildClassifyInput=%q, want %q", got, want)
	}
}

func TestBuildClassifyInput_TruncatesLongTexts(t *testing.T) {
	t.Parallel()

	long := strings.Repeat("a", 5000)
	got := buildClassifyInput([]string{long})
	if len(got) > 2100 {
		t.Fatalf("len=%d, want long text truncated", len(got))
	}
}

func TestClassifySchemaIsOpenAICompliant(t *testing.T) {
	t.Parallel()

	assertCompliant(t, classifySchema)
}

func assertCompliant(t *testing.T, node map[string]interface{}) {
	t.Helper()
	if node["type"] == "object" {
		if node["additionalProperties"] != false {
			t.Fatalf("object node missing additionalProperties=false: %v", node)
		}
		props, _ := node["properties"].(map[string]interface{})
		names := make(map[string]bool)
		switch required := node["required"].(type) {
		case []string:
			for _, r := range required {
				names[r] = true
			}
		case []interface{}:
			for _, r := range required {
				if s, ok := r.(string); ok {
					names[s] = true
				}
			}
		}
		for name, sub := range props {
			if !names[name] {
				t.Fatalf("property %q not listed as required", name)
			}
			if m, ok := sub.(map[string]interface{}); ok {
				assertCompliant(t, m)
			}
		}
	}
	if items, ok := node["items"].(map[string]interface{}); ok {
		assertCompliant(t, items)
	}
}

func TestClassifierName(t *testing.T) {
	t.Parallel()

	c := NewClassifier("gpt-5-mini", "key")
	if c.Name() != BackendModel {
		t.Fatalf("Name=%q, want model", c.Name())
	}
	if c.Model() != "gpt-5-mini" {
		t.Fatalf("Model=%q", c.Model())
	}
}

func TestClassifier_MissingCredentials(t *testing.T) {
	t.Parallel()

	c := NewClassifier("gpt-5-mini", "")
	if _, err := c.ScoreBatch(context.Background(), []string{"hej"}); err == nil {
		t.Fatalf("expected error without an API key")
	}
	// The init error is remembered, not retried.
	if _, err := c.ScoreBatch(context.Background(), []string{"hej"}); err == nil {
		t.Fatalf("expected remembered init error")
	}
}
