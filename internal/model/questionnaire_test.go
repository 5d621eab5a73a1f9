package model

import "testing"

func TestParseTherapyType(t *testing.T) {
	for _, valid := range []string{"individual", "couple", "child"} {
		if _, err := ParseTherapyType(valid); err != nil {
			t.Errorf("ParseTherapyType(%q): %v", valid, err)
		}
	}
	for _, invalid := range []string{"", "group", "Individual"} {
		if _, err := ParseTherapyType(invalid); err == nil {
			t.Errorf("ParseTherapyType(%q) must fail", invalid)
		}
	}
}

func TestResponseMapChoice(t *testing.T) {
	m := ResponseMap{
		"q1": SingleChoice("Donna"),
		"q2": {Type: AnswerScale, Scale: 4},
	}

	if got := m.Choice("q1"); got != "Donna" {
		t.Errorf("Choice(q1) = %q", got)
	}
	// A non-single-choice answer yields no option.
	if got := m.Choice("q2"); got != "" {
		t.Errorf("Choice(q2) = %q, want empty", got)
	}
	if got := m.Choice("missing"); got != "" {
		t.Errorf("Choice(missing) = %q, want empty", got)
	}
}

func TestResponseMapFirstChoice(t *testing.T) {
	m := ResponseMap{
		"second": SingleChoice("B"),
		"third":  SingleChoice("C"),
	}

	if choice, present := m.FirstChoice("first", "second", "third"); !present || choice != "B" {
		t.Errorf("got (%q, %v), want (B, true)", choice, present)
	}

	if _, present := m.FirstChoice("nope", "nada"); present {
		t.Error("absent keys must report not present")
	}

	// The first present key wins even when its answer is another variant.
	m["first"] = Answer{Type: AnswerText, Text: "free form"}
	if choice, present := m.FirstChoice("first", "second"); !present || choice != "" {
		t.Errorf("got (%q, %v), want (\"\", true)", choice, present)
	}
}

func TestResponseMapRoundTrip(t *testing.T) {
	m := ResponseMap{
		"modality": SingleChoice("Solo online"),
		"topics":   {Type: AnswerMultipleChoice, Choices: []string{"Ansia", "Stress"}},
	}

	v, err := m.Value()
	if err != nil {
		t.Fatal(err)
	}

	var back ResponseMap
	if err := back.Scan([]byte(v.(string))); err != nil {
		t.Fatal(err)
	}
	if back.Choice("modality") != "Solo online" {
		t.Errorf("modality lost in round trip: %+v", back)
	}
	if len(back["topics"].Choices) != 2 {
		t.Errorf("choices lost in round trip: %+v", back["topics"])
	}
}
