// Package prompt renders structured health and activity data into the prompt
// text the catalog models were tuned on. Build is pure: the same input always
// yields the same prompt.
package prompt

import (
	"fmt"
	"strconv"
	"strings"

	"edgellm/internal/catalog"
	"edgellm/internal/generation"
)

// BloodPressure in mmHg.
type BloodPressure struct {
	Systolic  int `json:"systolic" yaml:"systolic"`
	Diastolic int `json:"diastolic" yaml:"diastolic"`
}

// Metric is a named measurement, e.g. the day's best activity metric.
type Metric struct {
	Name  string  `json:"name" yaml:"name"`
	Value float64 `json:"value" yaml:"value"`
}

// Input is the caller-supplied data for one prompt. Pointer fields are
// optional and rendered only when non-nil.
type Input struct {
	Steps         int     `json:"steps" yaml:"steps"`
	Calories      float64 `json:"calories" yaml:"calories"`
	ActiveMinutes int     `json:"active_minutes" yaml:"active_minutes"`
	DistanceKm    float64 `json:"distance_km" yaml:"distance_km"`
	HeartRate     int     `json:"heart_rate" yaml:"heart_rate"`

	SleepHours    *float64       `json:"sleep_hours,omitempty" yaml:"sleep_hours,omitempty"`
	WaterMl       *int           `json:"water_ml,omitempty" yaml:"water_ml,omitempty"`
	BloodPressure *BloodPressure `json:"blood_pressure,omitempty" yaml:"blood_pressure,omitempty"`

	// BestMetric is used by the wellness category only. When nil, the metric
	// with the largest value relative to its daily goal is chosen.
	BestMetric *Metric `json:"best_metric,omitempty" yaml:"best_metric,omitempty"`
}

// Unit keywords, matched case-insensitively against a metric name.
var unitKeywords = []struct {
	keywords []string
	unit     string
}{
	{[]string{"step", "걸음"}, "걸음"},
	{[]string{"calor", "kcal", "칼로리"}, "kcal"},
	{[]string{"time", "minute", "시간", "분"}, "분"},
	{[]string{"distance", "거리", "km"}, "km"},
}

// UnitFor resolves the display unit of a metric from its name. Unknown
// metrics have no unit.
func UnitFor(metric string) string {
	m := strings.ToLower(metric)
	for _, u := range unitKeywords {
		for _, k := range u.keywords {
			if strings.Contains(m, k) {
				return u.unit
			}
		}
	}
	return ""
}

// Daily goals used to pick a best metric when the caller does not supply one.
const (
	goalSteps         = 8000
	goalCalories      = 400
	goalActiveMinutes = 30
	goalDistanceKm    = 5
)

// bestMetric picks the metric with the highest goal ratio.
func bestMetric(in Input) Metric {
	candidates := []struct {
		m     Metric
		ratio float64
	}{
		{Metric{"steps", float64(in.Steps)}, float64(in.Steps) / goalSteps},
		{Metric{"calories", in.Calories}, in.Calories / goalCalories},
		{Metric{"active time", float64(in.ActiveMinutes)}, float64(in.ActiveMinutes) / goalActiveMinutes},
		{Metric{"distance", in.DistanceKm}, in.DistanceKm / goalDistanceKm},
	}
	best := candidates[0]
	for _, c := range candidates[1:] {
		if c.ratio > best.ratio {
			best = c
		}
	}
	return best.m
}

// metricLabels are the display names of the built-in metric keys.
var metricLabels = map[string]string{
	"steps":       "걸음 수",
	"calories":    "소모 칼로리",
	"active time": "활동 시간",
	"distance":    "이동 거리",
}

func num(v float64) string { return strconv.FormatFloat(v, 'f', -1, 64) }

// closing returns the instruction sentence for a perspective.
func closing(p catalog.Perspective) (string, error) {
	switch p {
	case catalog.PerspectiveSelf:
		return fmt.Sprintf("위 내용을 한 줄로 요약해 주세요. 답변은 한 문장으로 쓰고 끝에 %s 태그를 붙여 주세요.", generation.SingleSentenceTag), nil
	case catalog.PerspectiveOther:
		return fmt.Sprintf("위 내용을 보고 응원하는 문장 3개를 작성해 주세요. 각 문장 끝에 %s 태그를 붙여 주세요.", generation.DelimiterTag), nil
	case catalog.PerspectiveOtherShort:
		return fmt.Sprintf("위 내용을 보고 20자 내외의 친근한 한 문장을 작성해 주세요. 문장 끝에 %s 태그를 붙여 주세요.", generation.DelimiterTag), nil
	}
	return "", fmt.Errorf("unknown perspective: %q", p)
}

// Build renders the prompt for category c and perspective p.
func Build(c catalog.Category, p catalog.Perspective, in Input) (string, error) {
	instr, err := closing(p)
	if err != nil {
		return "", err
	}
	var b strings.Builder
	switch c {
	case catalog.CategoryHealth:
		b.WriteString("다음은 오늘의 건강 기록입니다.")
	case catalog.CategoryWellness:
		b.WriteString("다음은 오늘의 활동 기록입니다.")
	default:
		return "", fmt.Errorf("unknown category: %q", c)
	}

	fmt.Fprintf(&b, " 걸음 수 %d걸음, 소모 칼로리 %skcal, 활동 시간 %d분, 이동 거리 %skm, 평균 심박수 %dbpm.",
		in.Steps, num(in.Calories), in.ActiveMinutes, num(in.DistanceKm), in.HeartRate)
	if in.SleepHours != nil {
		fmt.Fprintf(&b, " 수면 시간은 %s시간입니다.", num(*in.SleepHours))
	}
	if in.WaterMl != nil {
		fmt.Fprintf(&b, " 물 섭취량은 %dml입니다.", *in.WaterMl)
	}
	if in.BloodPressure != nil {
		fmt.Fprintf(&b, " 혈압은 %d/%dmmHg입니다.", in.BloodPressure.Systolic, in.BloodPressure.Diastolic)
	}

	if c == catalog.CategoryWellness {
		m := bestMetric(in)
		if in.BestMetric != nil {
			m = *in.BestMetric
		}
		label := m.Name
		if l, ok := metricLabels[m.Name]; ok {
			label = l
		}
		fmt.Fprintf(&b, " 오늘 가장 돋보인 기록은 %s %s%s입니다.", label, num(m.Value), UnitFor(m.Name))
	}

	b.WriteString(" ")
	b.WriteString(instr)
	return b.String(), nil
}
