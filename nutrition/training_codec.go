package nutrition

import (
	"encoding/json"
	"sort"
	"strconv"
	"strings"
)

// Compact day-list encoding: "0:chest.back|3:quads". Days are pipe-separated,
// the index is colon-separated from a dot-separated muscle list.

// EncodeDays renders days in the compact form, ordered by day index.
func EncodeDays(days []DayPlan) string {
	sorted := append([]DayPlan(nil), days...)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].DayIndex < sorted[j].DayIndex })

	parts := make([]string, len(sorted))
	for i, d := range sorted {
		muscles := make([]string, len(d.Muscles))
		for j, m := range d.Muscles {
			muscles[j] = string(m)
		}
		parts[i] = strconv.Itoa(d.DayIndex) + ":" + strings.Join(muscles, ".")
	}
	return strings.Join(parts, "|")
}

// DecodeDays parses the compact form in input order. Unknown muscle tokens are
// dropped and an index that does not parse becomes 0. The result may contain
// days with no muscles; ParseTraining rejects those.
func DecodeDays(s string) []DayPlan {
	if s == "" {
		return nil
	}
	raw := strings.Split(s, "|")
	days := make([]DayPlan, 0, len(raw))
	for _, dayStr := range raw {
		indexStr, musclesStr, _ := strings.Cut(dayStr, ":")
		idx, err := strconv.Atoi(strings.TrimSpace(indexStr))
		if err != nil {
			idx = 0
		}
		muscles := []MuscleGroup{}
		for _, tok := range strings.Split(musclesStr, ".") {
			if m := MuscleGroup(tok); m.Valid() {
				muscles = append(muscles, m)
			}
		}
		days = append(days, DayPlan{DayIndex: idx, Muscles: muscles})
	}
	return days
}

// ParseTraining builds a plan from the compact day list and the exercises
// count as they arrive in query strings. It returns nil when either is empty,
// any day lost all its muscles, or ex is not a positive integer.
func ParseTraining(d, ex string) *TrainingData {
	if d == "" || ex == "" {
		return nil
	}
	exercises, err := strconv.Atoi(strings.TrimSpace(ex))
	if err != nil || exercises <= 0 {
		return nil
	}
	days := DecodeDays(d)
	if len(days) == 0 {
		return nil
	}
	for _, day := range days {
		if len(day.Muscles) == 0 {
			return nil
		}
	}
	return &TrainingData{Days: days, ExercisesPerSession: exercises}
}

// storedTraining is the JSON wrapper kept in profiles.training_data.
// Older rows store ex as a number, newer ones as a string.
type storedTraining struct {
	D    string          `json:"d"`
	Ex   json.RawMessage `json:"ex"`
	Sets int             `json:"sets,omitempty"`
}

// ParseStoredTraining decodes the persisted JSON wrapper. Any failure yields
// nil, which callers treat as "no training plan".
func ParseStoredTraining(raw string) *TrainingData {
	if raw == "" {
		return nil
	}
	var st storedTraining
	if err := json.Unmarshal([]byte(raw), &st); err != nil {
		return nil
	}

	var ex string
	if err := json.Unmarshal(st.Ex, &ex); err != nil {
		var n json.Number
		if err := json.Unmarshal(st.Ex, &n); err != nil {
			return nil
		}
		ex = n.String()
	}

	td := ParseTraining(st.D, ex)
	if td == nil {
		return nil
	}
	if st.Sets > 0 {
		td.SetsPerSession = st.Sets
	}
	return td
}

// StorageJSON is the inverse of ParseStoredTraining.
func (t TrainingData) StorageJSON() string {
	b, _ := json.Marshal(storedTraining{
		D:    EncodeDays(t.Days),
		Ex:   json.RawMessage(strconv.Quote(strconv.Itoa(t.ExercisesPerSession))),
		Sets: t.SetsPerSession,
	})
	return string(b)
}
