package progress

import "errors"

var ErrInvalidScore = errors.New("score must be between 0 and 100")
