package domain

// TrainingCounts holds attempt totals across training trials.
type TrainingCounts struct {
	Trials          int64 `json:"trials"`
	Attempts        int64 `json:"attempts"`
	CorrectAttempts int64 `json:"correct_attempts"`
	FirstAttemptHit int64 `json:"first_attempt_hits"`
}

// TestCounts holds signal-detection totals across test trials. A "yes"
// response means the word was judged grammatical.
type TestCounts struct {
	Trials            int64 `json:"trials"`
	Correct           int64 `json:"correct"`
	Invalid           int64 `json:"invalid"`
	Omitted           int64 `json:"omitted"`
	Hits              int64 `json:"hits"`               // grammatical judged grammatical
	Misses            int64 `json:"misses"`             // grammatical judged ungrammatical
	FalseAlarms       int64 `json:"false_alarms"`       // ungrammatical judged grammatical
	CorrectRejections int64 `json:"correct_rejections"` // ungrammatical judged ungrammatical
}

// TrainingRates holds derived training ratios.
type TrainingRates struct {
	AttemptAccuracy      float64 `json:"attempt_accuracy"`
	FirstAttemptAccuracy float64 `json:"first_attempt_accuracy"`
	AttemptsPerTrial     float64 `json:"attempts_per_trial"`
}

// TestRates holds derived test ratios.
type TestRates struct {
	Accuracy       float64 `json:"accuracy"`
	HitRate        float64 `json:"hit_rate"`
	FalseAlarmRate float64 `json:"false_alarm_rate"`
	ResponseRate   float64 `json:"response_rate"`
}

// Add accumulates a finished training trial.
func (c *TrainingCounts) Add(t *TrainingTrial) {
	c.Trials++
	c.Attempts += int64(len(t.Attempts))
	for _, a := range t.Attempts {
		if a.Correct {
			c.CorrectAttempts++
		}
	}
	if len(t.Attempts) > 0 && t.Attempts[0].Correct {
		c.FirstAttemptHit++
	}
}

// Add accumulates a finished test trial.
func (c *TestCounts) Add(t TestTrial) {
	c.Trials++
	if t.Correct {
		c.Correct++
	}
	switch t.Response {
	case ResponseInvalid:
		c.Invalid++
	case ResponseOmitted:
		c.Omitted++
	case ResponseGrammatical:
		if t.Grammatical {
			c.Hits++
		} else {
			c.FalseAlarms++
		}
	case ResponseUngrammatical:
		if t.Grammatical {
			c.Misses++
		} else {
			c.CorrectRejections++
		}
	}
}

// Rates derives training ratios. All divisions are zero-safe: returns 0
// when the divisor is zero.
func (c TrainingCounts) Rates() TrainingRates {
	var r TrainingRates
	if c.Attempts > 0 {
		r.AttemptAccuracy = float64(c.CorrectAttempts) / float64(c.Attempts)
	}
	if c.Trials > 0 {
		r.FirstAttemptAccuracy = float64(c.FirstAttemptHit) / float64(c.Trials)
		r.AttemptsPerTrial = float64(c.Attempts) / float64(c.Trials)
	}
	return r
}

// Rates derives test ratios. Invalid and omitted trials count against
// accuracy but are excluded from the hit and false-alarm rates.
func (c TestCounts) Rates() TestRates {
	var r TestRates
	if c.Trials > 0 {
		r.Accuracy = float64(c.Correct) / float64(c.Trials)
		r.ResponseRate = float64(c.Trials-c.Invalid-c.Omitted) / float64(c.Trials)
	}
	if signal := c.Hits + c.Misses; signal > 0 {
		r.HitRate = float64(c.Hits) / float64(signal)
	}
	if noise := c.FalseAlarms + c.CorrectRejections; noise > 0 {
		r.FalseAlarmRate = float64(c.FalseAlarms) / float64(noise)
	}
	return r
}

// CorrectedRates applies the log-linear correction (add 0.5 to each cell)
// so that rates of 0 and 1 stay finite under the normal quantile.
func (c TestCounts) CorrectedRates() (hitRate, falseAlarmRate float64) {
	hitRate = (float64(c.Hits) + 0.5) / (float64(c.Hits+c.Misses) + 1)
	falseAlarmRate = (float64(c.FalseAlarms) + 0.5) / (float64(c.FalseAlarms+c.CorrectRejections) + 1)
	return hitRate, falseAlarmRate
}
