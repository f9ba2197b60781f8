package server

import (
	"encoding/json"
	stderrors "errors"
	"net/http"

	"github.com/UltraBlur/Elephant-Toolkits-Open/internal/errors"
	"github.com/UltraBlur/Elephant-Toolkits-Open/internal/history"
	"github.com/UltraBlur/Elephant-Toolkits-Open/internal/logger"
	"github.com/UltraBlur/Elephant-Toolkits-Open/internal/mask"
	"github.com/UltraBlur/Elephant-Toolkits-Open/internal/metrics"
	"github.com/UltraBlur/Elephant-Toolkits-Open/pkg/timecode"
	"github.com/UltraBlur/Elephant-Toolkits-Open/pkg/version"
)

const maxBodyBytes = 64 << 10

// settings are the decode parameters shared by the conversion endpoints.
// Omitted fields fall back to the engine configuration.
type settings struct {
	Format    string         `json:"format,omitempty"`
	Rate      *timecode.Rate `json:"rate,omitempty"`
	DropFrame *bool          `json:"drop_frame,omitempty"`
	Strict    *bool          `json:"strict,omitempty"`
}

type resolved struct {
	format timecode.Format
	rate   timecode.Rate
	opts   timecode.Options
}

func (s *Server) resolve(in settings) (resolved, error) {
	out := resolved{format: s.engine.Format(), rate: s.engine.Rate(), opts: s.engine.Options()}

	if in.Format != "" {
		f, err := timecode.ParseFormat(in.Format)
		if err != nil {
			return resolved{}, err
		}
		out.format = f
	}
	if in.Rate != nil {
		if err := timecode.ValidateCustomRate(*in.Rate); err != nil {
			return resolved{}, err
		}
		out.rate = *in.Rate
	}

	// The configured drop-frame default only applies where it is defined.
	out.opts.DropFrame = out.opts.DropFrame && out.rate.DropFrameEligible()
	if in.DropFrame != nil {
		out.opts.DropFrame = *in.DropFrame
	}
	if in.Strict != nil {
		out.opts.Strict = *in.Strict
	}
	return out, nil
}

// parse decodes input and counts failures by format and field.
func parse(input string, res resolved) (timecode.Timecode, error) {
	tc, err := timecode.Parse(input, res.format, res.rate, res.opts)
	if err != nil {
		var parseErr *timecode.ParseError
		if stderrors.As(err, &parseErr) {
			metrics.RecordParseError(string(parseErr.Format), parseErr.Field)
		}
		return timecode.Timecode{}, err
	}
	return tc, nil
}

// decode reads a JSON request body into v.
func (s *Server) decode(w http.ResponseWriter, r *http.Request, v interface{}) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return errors.Wrap(err, errors.ErrorTypeValidation, "Invalid request body", http.StatusBadRequest).
			WithCode("INVALID_BODY").
			WithDetails(map[string]interface{}{"reason": err.Error()})
	}
	return nil
}

// writeJSON is a helper to write JSON responses
func (s *Server) writeJSON(w http.ResponseWriter, r *http.Request, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		logger.FromContext(r.Context()).WithError(err).Error("Failed to encode response")
	}
}

// timecodeView is the JSON form of a value.
type timecodeView struct {
	Frames      int64                 `json:"frames"`
	Rate        timecode.Rate         `json:"rate"`
	DropFrame   bool                  `json:"drop_frame"`
	Seconds     float64               `json:"seconds"`
	Conversions []timecode.Conversion `json:"conversions"`
}

func viewOf(tc timecode.Timecode) timecodeView {
	return timecodeView{
		Frames:      tc.Frames(),
		Rate:        tc.Rate(),
		DropFrame:   tc.DropFrame(),
		Seconds:     tc.Seconds(),
		Conversions: timecode.ConvertAll(tc),
	}
}

func warningText(res timecode.Result) string {
	if w := res.Warning(); w != nil {
		return w.Error()
	}
	return ""
}

func (s *Server) handleVersion(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Cache-Control", "public, max-age=3600")
	s.writeJSON(w, r, http.StatusOK, version.GetInfo())
}

type rateView struct {
	Rate              string `json:"rate"`
	Num               int64  `json:"num"`
	Den               int64  `json:"den"`
	Nominal           int64  `json:"nominal"`
	DropFrameEligible bool   `json:"drop_frame_eligible"`
}

func (s *Server) handleRates(w http.ResponseWriter, r *http.Request) {
	supported := timecode.SupportedRates()
	rates := make([]rateView, 0, len(supported))
	for _, rt := range supported {
		rates = append(rates, rateView{
			Rate:              rt.String(),
			Num:               rt.Num,
			Den:               rt.Den,
			Nominal:           rt.Nominal(),
			DropFrameEligible: rt.DropFrameEligible(),
		})
	}

	s.writeJSON(w, r, http.StatusOK, struct {
		Rates   []rateView `json:"rates"`
		Default string     `json:"default"`
	}{Rates: rates, Default: s.engine.Rate().String()})
}

type formatView struct {
	Format      timecode.Format `json:"format"`
	Label       string          `json:"label"`
	Placeholder string          `json:"placeholder"`
}

func (s *Server) handleFormats(w http.ResponseWriter, r *http.Request) {
	all := timecode.Formats()
	formats := make([]formatView, 0, len(all))
	for _, f := range all {
		formats = append(formats, formatView{Format: f, Label: f.Label(), Placeholder: mask.Placeholder(f)})
	}

	s.writeJSON(w, r, http.StatusOK, struct {
		Formats []formatView    `json:"formats"`
		Default timecode.Format `json:"default"`
	}{Formats: formats, Default: s.engine.Format()})
}

type convertRequest struct {
	Input string `json:"input"`
	settings
}

func (s *Server) handleConvert(w http.ResponseWriter, r *http.Request) {
	var req convertRequest
	if err := s.decode(w, r, &req); err != nil {
		s.errorHandler.HandleError(w, r, err)
		return
	}

	res, err := s.resolve(req.settings)
	if err != nil {
		s.errorHandler.HandleError(w, r, err)
		return
	}
	tc, err := parse(req.Input, res)
	if err != nil {
		s.errorHandler.HandleError(w, r, err)
		return
	}

	metrics.RecordConversion(string(res.format))
	s.writeJSON(w, r, http.StatusOK, viewOf(tc))
}

type calculateRequest struct {
	A         string `json:"a"`
	B         string `json:"b"`
	Operation string `json:"operation"`
	settings
}

type calculateResponse struct {
	Result  string         `json:"result"`
	Value   timecodeView   `json:"value"`
	Clamped bool           `json:"clamped"`
	Warning string         `json:"warning,omitempty"`
	Entry   *history.Entry `json:"entry,omitempty"`
}

func (s *Server) handleCalculate(w http.ResponseWriter, r *http.Request) {
	var req calculateRequest
	if err := s.decode(w, r, &req); err != nil {
		s.errorHandler.HandleError(w, r, err)
		return
	}

	op, err := timecode.ParseOperation(req.Operation)
	if err != nil {
		s.errorHandler.HandleError(w, r, err)
		return
	}
	res, err := s.resolve(req.settings)
	if err != nil {
		s.errorHandler.HandleError(w, r, err)
		return
	}
	a, err := parse(req.A, res)
	if err != nil {
		s.errorHandler.HandleError(w, r, err)
		return
	}
	b, err := parse(req.B, res)
	if err != nil {
		s.errorHandler.HandleError(w, r, err)
		return
	}

	result, err := timecode.Calculate(a, b, op)
	if err != nil {
		s.errorHandler.HandleError(w, r, err)
		return
	}
	metrics.RecordCalculation(op.Name(), result.Clamped)

	text, err := result.Timecode.Encode(res.format)
	if err != nil {
		s.errorHandler.HandleError(w, r, err)
		return
	}

	resp := calculateResponse{
		Result:  text,
		Value:   viewOf(result.Timecode),
		Clamped: result.Clamped,
		Warning: warningText(result),
	}
	if entry, ok := s.record(r, a, b, op, result, res.format); ok {
		resp.Entry = &entry
	}

	s.writeJSON(w, r, http.StatusOK, resp)
}

// record stores a calculation. A history failure is logged and counted but
// never fails the calculation itself.
func (s *Server) record(r *http.Request, a, b timecode.Timecode, op timecode.Operation, res timecode.Result, f timecode.Format) (history.Entry, bool) {
	log := logger.FromContext(r.Context())

	entry, err := history.NewEntry(a, b, op, res, f)
	if err != nil {
		log.WithError(err).Warn("Failed to build history entry")
		return history.Entry{}, false
	}
	if err := s.history.Add(r.Context(), entry); err != nil {
		metrics.IncrementHistoryError(s.backend, "add")
		log.WithError(err).WithField("backend", s.backend).Warn("Failed to record calculation")
		return history.Entry{}, false
	}
	return entry, true
}

func (s *Server) handleListHistory(w http.ResponseWriter, r *http.Request) {
	entries, err := s.history.List(r.Context())
	if err != nil {
		metrics.IncrementHistoryError(s.backend, "list")
		s.errorHandler.HandleError(w, r, errors.NewServiceDownError("history"))
		return
	}
	if entries == nil {
		entries = []history.Entry{}
	}

	s.writeJSON(w, r, http.StatusOK, struct {
		Entries []history.Entry `json:"entries"`
	}{Entries: entries})
}

func (s *Server) handleClearHistory(w http.ResponseWriter, r *http.Request) {
	if err := s.history.Clear(r.Context()); err != nil {
		metrics.IncrementHistoryError(s.backend, "clear")
		s.errorHandler.HandleError(w, r, errors.NewServiceDownError("history"))
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type samplesRequest struct {
	Samples    int64          `json:"samples"`
	SampleRate int64          `json:"sample_rate,omitempty"`
	Rate       *timecode.Rate `json:"rate,omitempty"`
	DropFrame  *bool          `json:"drop_frame,omitempty"`
}

func (s *Server) handleSamplesToTimecode(w http.ResponseWriter, r *http.Request) {
	var req samplesRequest
	if err := s.decode(w, r, &req); err != nil {
		s.errorHandler.HandleError(w, r, err)
		return
	}

	res, err := s.resolve(settings{Rate: req.Rate, DropFrame: req.DropFrame})
	if err != nil {
		s.errorHandler.HandleError(w, r, err)
		return
	}
	tc, err := timecode.SamplesToTimecode(req.Samples, s.sampleRate(req.SampleRate), res.rate, res.opts.DropFrame)
	if err != nil {
		s.errorHandler.HandleError(w, r, err)
		return
	}

	s.writeJSON(w, r, http.StatusOK, viewOf(tc))
}

type offsetRequest struct {
	Samples      int64          `json:"samples"`
	SampleRate   int64          `json:"sample_rate,omitempty"`
	Rate         *timecode.Rate `json:"rate,omitempty"`
	OffsetFrames int64          `json:"offset_frames"`
}

type offsetResponse struct {
	Samples     int64  `json:"samples"`
	OldTimecode string `json:"old_timecode"`
	NewTimecode string `json:"new_timecode"`
	Clamped     bool   `json:"clamped"`
	Warning     string `json:"warning,omitempty"`
}

func (s *Server) handleOffsetSamples(w http.ResponseWriter, r *http.Request) {
	var req offsetRequest
	if err := s.decode(w, r, &req); err != nil {
		s.errorHandler.HandleError(w, r, err)
		return
	}

	res, err := s.resolve(settings{Rate: req.Rate})
	if err != nil {
		s.errorHandler.HandleError(w, r, err)
		return
	}
	sampleRate := s.sampleRate(req.SampleRate)

	before, err := timecode.SamplesToTimecode(req.Samples, sampleRate, res.rate, false)
	if err != nil {
		s.errorHandler.HandleError(w, r, err)
		return
	}
	samples, result, err := timecode.OffsetSamples(req.Samples, sampleRate, res.rate, req.OffsetFrames)
	if err != nil {
		s.errorHandler.HandleError(w, r, err)
		return
	}
	if result.Clamped {
		metrics.RecordClamp("offset")
	}

	s.writeJSON(w, r, http.StatusOK, offsetResponse{
		Samples:     samples,
		OldTimecode: before.SMPTE(),
		NewTimecode: result.Timecode.SMPTE(),
		Clamped:     result.Clamped,
		Warning:     warningText(result),
	})
}

func (s *Server) sampleRate(requested int64) int64 {
	if requested != 0 {
		return requested
	}
	return s.defaultSampleRate
}

type maskRequest struct {
	Format string         `json:"format,omitempty"`
	Rate   *timecode.Rate `json:"rate,omitempty"`
	Text   string         `json:"text"`
	Cursor int            `json:"cursor"`
}

type maskResponse struct {
	Text        string `json:"text"`
	Cursor      int    `json:"cursor"`
	Placeholder string `json:"placeholder"`
}

func (s *Server) handleMask(w http.ResponseWriter, r *http.Request) {
	var req maskRequest
	if err := s.decode(w, r, &req); err != nil {
		s.errorHandler.HandleError(w, r, err)
		return
	}

	res, err := s.resolve(settings{Format: req.Format, Rate: req.Rate})
	if err != nil {
		s.errorHandler.HandleError(w, r, err)
		return
	}
	text, cursor := mask.Apply(res.format, res.rate, req.Text, req.Cursor)

	s.writeJSON(w, r, http.StatusOK, maskResponse{
		Text:        text,
		Cursor:      cursor,
		Placeholder: mask.Placeholder(res.format),
	})
}
