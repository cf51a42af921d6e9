package httpapi

import (
	"errors"

	"github.com/ruslanbay/codedrill/internal/domain/entities"
)

type pairRequest struct {
	UserID    string `json:"userId"`
	ProblemID string `json:"problemId"`
}

type addRequest struct {
	UserID       string `json:"userId"`
	ProblemID    string `json:"problemId"`
	InitialLevel int    `json:"initialLevel"`
}

// reviewRequest accepts the current four-valued outcome plus the two legacy
// forms older clients still send. Translation to the Outcome enum happens
// here, at the boundary, before anything touches the scheduler.
type reviewRequest struct {
	UserID    string `json:"userId"`
	ProblemID string `json:"problemId"`
	Outcome   string `json:"outcome"`

	// Legacy forms.
	ReviewOption  string `json:"reviewOption,omitempty"`  // "easy" | "difficult" | "forgot"
	WasSuccessful *bool  `json:"wasSuccessful,omitempty"` // plain boolean clients
}

var legacyReviewOptions = map[string]entities.Outcome{
	"easy":      entities.OutcomeEasy,
	"difficult": entities.OutcomeFail,
	"forgot":    entities.OutcomeAgain,
}

func (r reviewRequest) outcome() (entities.Outcome, error) {
	if r.Outcome != "" {
		return entities.ParseOutcome(r.Outcome)
	}
	if r.ReviewOption != "" {
		if o, ok := legacyReviewOptions[r.ReviewOption]; ok {
			return o, nil
		}
		return "", errors.New("unknown review option " + r.ReviewOption)
	}
	if r.WasSuccessful != nil {
		if *r.WasSuccessful {
			return entities.OutcomePass, nil
		}
		return entities.OutcomeFail, nil
	}
	return "", errors.New("missing outcome")
}
