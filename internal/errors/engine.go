package errors

import (
	stderrors "errors"
	"net/http"

	"github.com/UltraBlur/Elephant-Toolkits-Open/pkg/timecode"
)

// Error codes for engine failures.
const (
	CodeInvalidTimecode   = "INVALID_TIMECODE"
	CodeInvalidRate       = "INVALID_RATE"
	CodeUnknownFormat     = "UNKNOWN_FORMAT"
	CodeUnknownOperation  = "UNKNOWN_OPERATION"
	CodeDropFrame         = "DROP_FRAME_UNSUPPORTED"
	CodeIncompatibleRate  = "INCOMPATIBLE_RATE"
	CodeNegativeValue     = "NEGATIVE_VALUE"
	CodeInvalidSampleRate = "INVALID_SAMPLE_RATE"
	CodeOverflow          = "OUT_OF_RANGE"
)

// FromEngine maps an error returned by the timecode engine to an AppError.
// Engine errors become validation errors carrying the failing field in
// their details. Anything else is wrapped as internal.
func FromEngine(err error) *AppError {
	if err == nil {
		return nil
	}
	if appErr, ok := GetAppError(err); ok {
		return appErr
	}

	var parseErr *timecode.ParseError
	if stderrors.As(err, &parseErr) {
		return validation(err, "Timecode could not be parsed", CodeInvalidTimecode).WithDetails(map[string]interface{}{
			"format": string(parseErr.Format),
			"input":  parseErr.Input,
			"field":  parseErr.Field,
			"reason": parseErr.Reason,
		})
	}

	var dfErr *timecode.InvalidDropFrameError
	if stderrors.As(err, &dfErr) {
		return validation(err, "Drop-frame is not defined at this frame rate", CodeDropFrame).WithDetails(map[string]interface{}{
			"rate": dfErr.Rate.String(),
		})
	}

	var rateErr *timecode.IncompatibleRateError
	if stderrors.As(err, &rateErr) {
		return validation(err, "Operands have different frame rates or drop-frame modes", CodeIncompatibleRate).WithDetails(map[string]interface{}{
			"a_rate":       rateErr.A.String(),
			"b_rate":       rateErr.B.String(),
			"a_drop_frame": rateErr.ADrop,
			"b_drop_frame": rateErr.BDrop,
		})
	}

	switch {
	case stderrors.Is(err, timecode.ErrInvalidRate):
		return validation(err, "Invalid frame rate", CodeInvalidRate)
	case stderrors.Is(err, timecode.ErrUnknownFormat):
		return validation(err, "Unknown timecode format", CodeUnknownFormat)
	case stderrors.Is(err, timecode.ErrUnknownOperation):
		return validation(err, "Unknown operation", CodeUnknownOperation)
	case stderrors.Is(err, timecode.ErrNegativeFrames), stderrors.Is(err, timecode.ErrNegativeSamples):
		return validation(err, "Value must not be negative", CodeNegativeValue)
	case stderrors.Is(err, timecode.ErrInvalidSampleRate):
		return validation(err, "Sample rate must be positive", CodeInvalidSampleRate)
	case stderrors.Is(err, timecode.ErrOverflow):
		return validation(err, "Result is out of range", CodeOverflow)
	}

	return WrapInternalError(err, "An unexpected error occurred")
}

func validation(err error, message, code string) *AppError {
	return Wrap(err, ErrorTypeValidation, message, http.StatusBadRequest).WithCode(code)
}
