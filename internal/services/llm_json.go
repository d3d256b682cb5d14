package services

import (
	"regexp"
	"strings"
)

// Generative collaborators routinely wrap JSON in a markdown code block,
// with or without a "json" label.
var codeFenceRe = regexp.MustCompile("(?is)^```(?:json)?\\s*(.*?)\\s*```$")

func stripCodeFence(text string) string {
	text = strings.TrimSpace(text)
	if m := codeFenceRe.FindStringSubmatch(text); m != nil {
		return strings.TrimSpace(m[1])
	}
	return text
}

// clampScore forces a parsed score into [0,10]; nil stays nil so "not
// scored" remains distinguishable from a scored zero.
func clampScore(v *float64) *float64 {
	if v == nil {
		return nil
	}
	x := *v
	if x < 0 {
		x = 0
	}
	if x > 10 {
		x = 10
	}
	return &x
}
