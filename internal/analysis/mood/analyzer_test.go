package mood

import "testing"

func TestAnalyzeIrritatedMember(t *testing.T) {
	decision := Analyze("Honestly frustrated. My sleep is poor again and I'm running on fumes.")
	if decision.Mood != Irritated {
		t.Fatalf("expected irritated mood, got %s", decision.Mood)
	}
	if decision.Score <= 0 {
		t.Fatalf("expected positive score, got %d", decision.Score)
	}
}

func TestAnalyzeUpbeatMember(t *testing.T) {
	decision := Analyze("Good news, sleep is good now! Feeling great.")
	if decision.Mood != Upbeat {
		t.Fatalf("expected upbeat mood, got %s", decision.Mood)
	}
}

func TestAnalyzeEmptyIsNeutral(t *testing.T) {
	if decision := Analyze("   "); decision.Mood != Neutral {
		t.Fatalf("expected neutral mood, got %s", decision.Mood)
	}
}

func TestDominantAcrossMessages(t *testing.T) {
	decision := Dominant([]string{
		"Some progress this week, getting there.",
		"Thanks, that was helpful.",
		"Slowly improving, I'll give it a go.",
	})
	if decision.Mood != Hopeful {
		t.Fatalf("expected hopeful mood, got %s", decision.Mood)
	}
}

func TestDescribeFallsBackToNeutral(t *testing.T) {
	if Describe(Label("unknown")) != Describe(Neutral) {
		t.Fatal("expected neutral description for unknown label")
	}
	if len(Labels()) != len(descriptions) {
		t.Fatal("labels and descriptions out of sync")
	}
}
