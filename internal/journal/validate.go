package journal

import "time"

// 自由記述項目の最大長。DBではなくアプリケーション層で制限する。
const (
	maxActivityTypeLen = 100
	maxSymptomsLen     = 500
	maxNotesLen        = 2000
)

// CreateInput は記録作成リクエストの入力。
// すべての項目が任意で、未指定はnilのまま保持する。
type CreateInput struct {
	Date         *time.Time `json:"date,omitempty"`
	Mood         *int       `json:"mood,omitempty"`
	Anxiety      *int       `json:"anxiety,omitempty"`
	SleepHours   *float64   `json:"sleepHours,omitempty"`
	SleepQuality *int       `json:"sleepQuality,omitempty"`
	ActivityType *string    `json:"activityType,omitempty"`
	ActivityMins *int       `json:"activityMins,omitempty"`
	SocialCount  *int       `json:"socialCount,omitempty"`
	Stress       *int       `json:"stress,omitempty"`
	Symptoms     *string    `json:"symptoms,omitempty"`
	Notes        *string    `json:"notes,omitempty"`
}

// validate は各項目の許容範囲を検査し、違反した項目名をすべて返す。
// 部分受理は行わないため、1項目でも違反があれば作成全体を拒否する。
//
// 許容範囲:
//
//	mood 1〜10、anxiety 0〜10、sleepHours 0〜24（小数可）、sleepQuality 0〜10、
//	activityMins 0〜1440、socialCount 0〜100、stress 0〜10
func (in *CreateInput) validate() []string {
	var fields []string

	if in.Mood != nil && (*in.Mood < 1 || *in.Mood > 10) {
		fields = append(fields, "mood")
	}
	if in.Anxiety != nil && (*in.Anxiety < 0 || *in.Anxiety > 10) {
		fields = append(fields, "anxiety")
	}
	if in.SleepHours != nil && (*in.SleepHours < 0 || *in.SleepHours > 24) {
		fields = append(fields, "sleepHours")
	}
	if in.SleepQuality != nil && (*in.SleepQuality < 0 || *in.SleepQuality > 10) {
		fields = append(fields, "sleepQuality")
	}
	if in.ActivityType != nil && len(*in.ActivityType) > maxActivityTypeLen {
		fields = append(fields, "activityType")
	}
	if in.ActivityMins != nil && (*in.ActivityMins < 0 || *in.ActivityMins > 1440) {
		fields = append(fields, "activityMins")
	}
	if in.SocialCount != nil && (*in.SocialCount < 0 || *in.SocialCount > 100) {
		fields = append(fields, "socialCount")
	}
	if in.Stress != nil && (*in.Stress < 0 || *in.Stress > 10) {
		fields = append(fields, "stress")
	}
	if in.Symptoms != nil && len(*in.Symptoms) > maxSymptomsLen {
		fields = append(fields, "symptoms")
	}
	if in.Notes != nil && len(*in.Notes) > maxNotesLen {
		fields = append(fields, "notes")
	}

	return fields
}
