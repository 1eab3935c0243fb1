package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrContentUnavailable is returned when neither a static bank nor the generator can supply a set.
	ErrContentUnavailable = errors.New("content unavailable")

	// ErrInvalidSession covers every transition the session state machine does not allow.
	ErrInvalidSession = errors.New("invalid session transition")
	// ErrEmptySession is returned when a session is started with zero questions.
	ErrEmptySession = fmt.Errorf("%w: session has no questions", ErrInvalidSession)
	// ErrNotAnswered is returned when advancing before the current question is answered.
	ErrNotAnswered = fmt.Errorf("%w: current question not answered", ErrInvalidSession)
	// ErrSessionClosed is returned for any action on a completed or exited session.
	ErrSessionClosed = fmt.Errorf("%w: session already closed", ErrInvalidSession)
	// ErrOptionOutOfRange is returned for a pick outside the option list.
	ErrOptionOutOfRange = fmt.Errorf("%w: option out of range", ErrInvalidSession)
	// ErrInvalidSet is returned for set numbers below 1.
	ErrInvalidSet = fmt.Errorf("%w: set number must be positive", ErrInvalidSession)

	// ErrInvalidQuestion flags a malformed question (too few options, index out of bounds, missing fields).
	ErrInvalidQuestion = errors.New("invalid question")

	// ErrAlreadyAnswered is returned when a pick or timeout arrives for an answered question.
	ErrAlreadyAnswered = errors.New("question already answered")

	// ErrSessionNotFound is returned when a learner has no active session.
	ErrSessionNotFound = errors.New("quiz session not found")
	// ErrSessionActive is returned when a learner already has a session in progress.
	ErrSessionActive = errors.New("quiz session already active")
	// ErrSessionPending is returned while content for a learner's session is still resolving.
	ErrSessionPending = errors.New("quiz content still loading")
	// ErrResultNotFound is returned when a quiz id is not in the learner's history.
	ErrResultNotFound = errors.New("quiz result not found")
)
