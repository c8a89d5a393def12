package outcome

import (
	"sort"
	"strconv"
	"strings"

	"github.com/gridstake/gridstake/internal/domain"
)

// resolveFunc picks the correct option for one question type from provider
// facts. ok is false when the facts do not match any of the offered options.
type resolveFunc func(options []string, facts *domain.SessionFacts) (string, bool)

var resolvers = map[domain.QuestionType]resolveFunc{
	domain.QuestionTypePole:                resolvePole,
	domain.QuestionTypeWinner:              resolveWinner,
	domain.QuestionTypeTop5:                resolveTop5,
	domain.QuestionTypeDNF:                 resolveDNF,
	domain.QuestionTypeFastestLap:          resolveFastestLap,
	domain.QuestionTypeSafetyCar:           resolveSafetyCar,
	domain.QuestionTypeMidfieldConstructor: resolveMidfieldConstructor,
	domain.QuestionTypeFirstPitStopTeam:    resolveFirstPitStopTeam,
	domain.QuestionTypeFirstSafetyCarLap:   resolveFirstSafetyCarLap,
}

// Resolve picks the correct option for a question from session facts.
// Unknown question types and facts that match no option both return ok=false;
// the caller counts those as unresolved and leaves the question untouched.
func Resolve(question *domain.QuestionInstance, facts *domain.SessionFacts) (string, bool) {
	resolver, ok := resolvers[question.QuestionType]
	if !ok {
		return "", false
	}
	return resolver(question.Options, facts)
}

// normalizeToken uppercases and strips every non-alphanumeric rune so that
// "Lap 12", "LAP_12" and "lap-12" all compare equal.
func normalizeToken(value string) string {
	var b strings.Builder
	for _, r := range strings.ToUpper(value) {
		if (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// matchOption returns the first option matched by any candidate, comparing
// normalized tokens. Candidates are tried in order; empty ones are skipped.
func matchOption(options []string, candidates []string) (string, bool) {
	byToken := make(map[string]string, len(options))
	for _, option := range options {
		byToken[normalizeToken(option)] = option
	}
	for _, candidate := range candidates {
		if candidate == "" {
			continue
		}
		if option, ok := byToken[normalizeToken(candidate)]; ok {
			return option, true
		}
	}
	return "", false
}

func resolvePole(options []string, facts *domain.SessionFacts) (string, bool) {
	// Qualifying facts carry the pole sitter; race facts only carry the
	// winner, which doubles as the fallback candidate.
	return matchOption(options, []string{deref(facts.Pole), deref(facts.Winner)})
}

func resolveWinner(options []string, facts *domain.SessionFacts) (string, bool) {
	return matchOption(options, []string{deref(facts.Winner)})
}

func resolveTop5(options []string, facts *domain.SessionFacts) (string, bool) {
	return matchOption(options, facts.Top5)
}

func resolveDNF(options []string, facts *domain.SessionFacts) (string, bool) {
	return matchOption(options, facts.DNFDriverCodes)
}

func resolveFastestLap(options []string, facts *domain.SessionFacts) (string, bool) {
	return matchOption(options, []string{deref(facts.FastestLap)})
}

func resolveSafetyCar(options []string, facts *domain.SessionFacts) (string, bool) {
	if facts.SafetyCar {
		return matchOption(options, []string{"YES", "Y", "TRUE", "1"})
	}
	return matchOption(options, []string{"NO", "N", "FALSE", "0"})
}

func resolveMidfieldConstructor(options []string, facts *domain.SessionFacts) (string, bool) {
	midfield := deref(facts.MidfieldConstructor)
	if midfield == "" {
		midfield = deriveMidfield(facts.ConstructorPoints)
	}
	return matchOption(options, []string{midfield})
}

// deriveMidfield ranks constructors by points and returns the best one
// outside the top three. Equal points are broken by name ascending so the
// result does not depend on map iteration order.
func deriveMidfield(points map[string]int) string {
	if len(points) == 0 {
		return ""
	}
	names := make([]string, 0, len(points))
	for name := range points {
		names = append(names, name)
	}
	sort.Slice(names, func(i, j int) bool {
		if points[names[i]] != points[names[j]] {
			return points[names[i]] > points[names[j]]
		}
		return names[i] < names[j]
	})
	if len(names) <= 3 {
		return ""
	}
	return names[3]
}

func resolveFirstPitStopTeam(options []string, facts *domain.SessionFacts) (string, bool) {
	return matchOption(options, []string{deref(facts.FirstPitStopTeam)})
}

func resolveFirstSafetyCarLap(options []string, facts *domain.SessionFacts) (string, bool) {
	if facts.FirstSafetyCarLap != nil {
		lap := strconv.Itoa(*facts.FirstSafetyCarLap)
		return matchOption(options, []string{lap, "LAP " + lap})
	}
	return matchOption(options, []string{"NONE", "NO", "NO SC", "NO_SAFETY_CAR", "NA"})
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
