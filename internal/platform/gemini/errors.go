package gemini

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"

	"github.com/bridgehead/bridgehead-api/internal/generation"
	"google.golang.org/genai"
)

// classifyError maps an error returned by the SDK onto the generation error
// taxonomy and reports whether another attempt could succeed.
func classifyError(err error) (error, bool) {
	if code, ok := apiErrorCode(err); ok {
		switch {
		case code == http.StatusTooManyRequests,
			code == http.StatusRequestTimeout,
			code >= http.StatusInternalServerError:
			return fmt.Errorf("%w: upstream returned status %d: %v",
				generation.ErrTransientFailure, code, err), true
		case code == http.StatusUnauthorized, code == http.StatusForbidden:
			return fmt.Errorf("%w: upstream rejected credentials: %v",
				generation.ErrInvalidConfig, err), false
		default:
			return fmt.Errorf("%w: upstream returned status %d: %v",
				generation.ErrGenerationFailed, code, err), false
		}
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%w: attempt timed out: %v", generation.ErrTransientFailure, err), true
	}

	var netErr net.Error
	if errors.As(err, &netErr) {
		return fmt.Errorf("%w: network error: %v", generation.ErrTransientFailure, err), true
	}

	// Unknown errors are most often connection resets surfaced as plain errors.
	return fmt.Errorf("%w: %v", generation.ErrTransientFailure, err), true
}

func apiErrorCode(err error) (int, bool) {
	var apiErr genai.APIError
	if errors.As(err, &apiErr) {
		return apiErr.Code, true
	}
	var apiErrPtr *genai.APIError
	if errors.As(err, &apiErrPtr) && apiErrPtr != nil {
		return apiErrPtr.Code, true
	}
	return 0, false
}
