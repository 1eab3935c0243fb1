package domain

import "time"

// TimedOutAnswer is stamped as the user answer when the countdown expires before a pick.
// It is out of range for every option list, so it never compares equal to a correct index.
const TimedOutAnswer = -1

// Difficulty is the requested hardness of generated content.
type Difficulty string

const (
	DifficultyEasy   Difficulty = "Easy"
	DifficultyMedium Difficulty = "Medium"
	DifficultyHard   Difficulty = "Hard"
)

// Question models one MCQ item. UserAnswer is nil until the session stamps it.
type Question struct {
	ID                 string   `json:"id"`
	Text               string   `json:"text"`
	Options            []string `json:"options"`
	CorrectAnswerIndex int      `json:"correctAnswerIndex"`
	Explanation        string   `json:"explanation,omitempty"`
	UserAnswer         *int     `json:"userAnswer,omitempty"`
}

// Answered reports whether the question received a pick or timed out.
func (q Question) Answered() bool {
	return q.UserAnswer != nil
}

// TimedOut reports whether the countdown expired on this question.
func (q Question) TimedOut() bool {
	return q.UserAnswer != nil && *q.UserAnswer == TimedOutAnswer
}

// AnsweredCorrectly reports whether the stamped answer matches the correct index.
func (q Question) AnsweredCorrectly() bool {
	return q.UserAnswer != nil && *q.UserAnswer == q.CorrectAnswerIndex
}

// Clone returns a deep copy so callers never share option slices or answer pointers.
func (q Question) Clone() Question {
	out := q
	out.Options = append([]string(nil), q.Options...)
	if q.UserAnswer != nil {
		v := *q.UserAnswer
		out.UserAnswer = &v
	}
	return out
}

// CloneQuestions deep-copies a question list.
func CloneQuestions(questions []Question) []Question {
	out := make([]Question, len(questions))
	for i := range questions {
		out[i] = questions[i].Clone()
	}
	return out
}

// QuizResult is the immutable record of one completed session.
type QuizResult struct {
	QuizID         string     `json:"quizId"`
	Score          int        `json:"score"`
	TotalQuestions int        `json:"totalQuestions"`
	Date           time.Time  `json:"date"`
	Topic          string     `json:"topic"`
	Questions      []Question `json:"questions"`
}

// Percent is the rounded share of correct answers.
func (r QuizResult) Percent() int {
	return Percentage(r.Score, r.TotalQuestions)
}

// Wrong counts every question that did not earn a point, timeouts included.
func (r QuizResult) Wrong() int {
	return r.TotalQuestions - r.Score
}

// ReviewStatus classifies a question for the review screen.
type ReviewStatus string

const (
	ReviewCorrect  ReviewStatus = "correct"
	ReviewWrong    ReviewStatus = "wrong"
	ReviewTimedOut ReviewStatus = "timedOut"
)

// ReviewItem is one annotated question of a finished result.
type ReviewItem struct {
	Index              int          `json:"index"`
	Text               string       `json:"text"`
	Options            []string     `json:"options"`
	CorrectAnswerIndex int          `json:"correctAnswerIndex"`
	UserAnswer         *int         `json:"userAnswer,omitempty"`
	Status             ReviewStatus `json:"status"`
	Explanation        string       `json:"explanation,omitempty"`
}

// Review annotates every question of the result.
func (r QuizResult) Review() []ReviewItem {
	items := make([]ReviewItem, 0, len(r.Questions))
	for i, q := range r.Questions {
		status := ReviewWrong
		switch {
		case q.TimedOut():
			status = ReviewTimedOut
		case q.AnsweredCorrectly():
			status = ReviewCorrect
		}
		var answer *int
		if q.UserAnswer != nil && !q.TimedOut() {
			v := *q.UserAnswer
			answer = &v
		}
		items = append(items, ReviewItem{
			Index:              i,
			Text:               q.Text,
			Options:            append([]string(nil), q.Options...),
			CorrectAnswerIndex: q.CorrectAnswerIndex,
			UserAnswer:         answer,
			Status:             status,
			Explanation:        q.Explanation,
		})
	}
	return items
}

// Percentage returns round(part/total*100), or 0 for an empty total.
func Percentage(part, total int) int {
	if total <= 0 {
		return 0
	}
	return int(float64(part)/float64(total)*100 + 0.5)
}

// GenerationRequest is what the remote content generator is asked for.
type GenerationRequest struct {
	Topic      string     `json:"topic"`
	Difficulty Difficulty `json:"difficulty"`
	Count      int        `json:"count"`
	SetNumber  int        `json:"setNumber"`
}

// ContentSource names where a resolved question list came from.
type ContentSource string

const (
	SourceStatic    ContentSource = "static"
	SourceGenerated ContentSource = "generated"
)

// Phase is the session controller state.
type Phase string

const (
	PhaseAwaitingAnswer Phase = "awaitingAnswer"
	PhaseAnswered       Phase = "answered"
	PhaseCompleted      Phase = "completed"
	PhaseExited         Phase = "exited"
)

// SessionView is a read-only snapshot of a running session, safe to hand to presentation.
// CorrectAnswerIndex and Explanation are only revealed once the current question is answered.
type SessionView struct {
	SessionID          string   `json:"sessionId"`
	Topic              string   `json:"topic"`
	Phase              Phase    `json:"phase"`
	Index              int      `json:"index"`
	Total              int      `json:"total"`
	QuestionID         string   `json:"questionId"`
	Text               string   `json:"text"`
	Options            []string `json:"options"`
	SelectedOption     *int     `json:"selectedOption,omitempty"`
	TimedOut           bool     `json:"timedOut"`
	CorrectAnswerIndex *int     `json:"correctAnswerIndex,omitempty"`
	Explanation        string   `json:"explanation,omitempty"`
	Score              int      `json:"score"`
	Missed             int      `json:"missed"`
	TimeRemaining      int      `json:"timeRemaining"`
	IsLast             bool     `json:"isLast"`
}

// AnswerOutcome summarizes a recorded pick.
type AnswerOutcome struct {
	QuestionID         string `json:"questionId"`
	Option             int    `json:"option"`
	Correct            bool   `json:"correct"`
	CorrectAnswerIndex int    `json:"correctAnswerIndex"`
	Explanation        string `json:"explanation,omitempty"`
	Score              int    `json:"score"`
	Missed             int    `json:"missed"`
}

// TrendPoint is one entry of the performance chart.
type TrendPoint struct {
	Name  string `json:"name"`
	Score int    `json:"score"`
}

// ProgressReport is the dashboard view of a learner's ledger.
type ProgressReport struct {
	LearnerID     string       `json:"learnerId"`
	Experience    int          `json:"experience"`
	Level         int          `json:"level"`
	LevelProgress float64      `json:"levelProgress"`
	DailyProgress float64      `json:"dailyProgress"`
	Trend         []TrendPoint `json:"trend"`
	Completed     int          `json:"completed"`
}

// LeaderboardEntry is one ranked learner.
type LeaderboardEntry struct {
	Rank          int    `json:"rank"`
	LearnerID     string `json:"learnerId"`
	Name          string `json:"name"`
	XP            int    `json:"xp"`
	IsCurrentUser bool   `json:"isCurrentUser,omitempty"`
}

// Leaderboard is an ordered ranking snapshot.
type Leaderboard struct {
	Entries   []LeaderboardEntry `json:"entries"`
	UpdatedAt time.Time          `json:"updatedAt"`
}

// ResultReview is the summary and per-question breakdown of one stored result.
type ResultReview struct {
	QuizID  string       `json:"quizId"`
	Topic   string       `json:"topic"`
	Date    time.Time    `json:"date"`
	Score   int          `json:"score"`
	Total   int          `json:"totalQuestions"`
	Percent int          `json:"percent"`
	Wrong   int          `json:"wrong"`
	Items   []ReviewItem `json:"items"`
}

// Summarize builds the review screen payload for r.
func (r QuizResult) Summarize() ResultReview {
	return ResultReview{
		QuizID:  r.QuizID,
		Topic:   r.Topic,
		Date:    r.Date,
		Score:   r.Score,
		Total:   r.TotalQuestions,
		Percent: r.Percent(),
		Wrong:   r.Wrong(),
		Items:   r.Review(),
	}
}

// Chapter is one named static bank.
type Chapter struct {
	Name      string     `json:"name"`
	Questions []Question `json:"questions"`
}
