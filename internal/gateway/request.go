package gateway

import (
	"encoding/base64"
	"encoding/json"
	"math"
	"strconv"
	"strings"

	"github.com/aws/aws-lambda-go/events"
	meterdomain "github.com/smallbiznis/metr/internal/meter/domain"
)

const pathParamMeterID = "meter_id"

// request is the part of an API Gateway event the handlers care about, with
// header names lower-cased.
type request struct {
	method    string
	rawPath   string
	requestID string
	headers   map[string]string
	query     map[string]string
	pathID    string
	body      string
	bodyErr   error
}

func newRequest(ev events.APIGatewayV2HTTPRequest) request {
	headers := make(map[string]string, len(ev.Headers))
	for k, v := range ev.Headers {
		headers[strings.ToLower(k)] = v
	}

	r := request{
		method:    strings.ToUpper(ev.RequestContext.HTTP.Method),
		rawPath:   ev.RawPath,
		requestID: ev.RequestContext.RequestID,
		headers:   headers,
		query:     ev.QueryStringParameters,
		pathID:    strings.TrimSpace(ev.PathParameters[pathParamMeterID]),
		body:      ev.Body,
	}
	if r.rawPath == "" {
		r.rawPath = ev.RequestContext.HTTP.Path
	}
	if r.pathID == "" {
		if _, id, ok := splitMeterPath(r.rawPath); ok {
			r.pathID = id
		}
	}
	if ev.IsBase64Encoded && ev.Body != "" {
		decoded, err := base64.StdEncoding.DecodeString(ev.Body)
		if err != nil {
			r.bodyErr = newValidationError("body", "invalid_encoding", "body is not valid base64")
		}
		r.body = string(decoded)
	}
	return r
}

func (r request) header(name string) string {
	return r.headers[strings.ToLower(name)]
}

// meterID parses the {meter_id} path parameter.
func (r request) meterID() (int64, error) {
	if r.pathID == "" {
		return 0, meterdomain.ErrMissingID
	}
	id, err := strconv.ParseInt(r.pathID, 10, 64)
	if err != nil || id <= 0 {
		return 0, meterdomain.ErrInvalidID
	}
	return id, nil
}

// splitMeterPath locates the meters collection in path, tolerating a single
// stage segment before it, and returns the collection path and the optional
// id segment.
func splitMeterPath(path string) (base, id string, ok bool) {
	segments := strings.Split(strings.Trim(path, "/"), "/")
	idx := -1
	for i, segment := range segments {
		if segment == "meters" {
			idx = i
			break
		}
	}
	if idx < 0 || idx > 1 {
		return "", "", false
	}

	base = "/" + strings.Join(segments[:idx+1], "/")
	switch rest := segments[idx+1:]; len(rest) {
	case 0:
		return base, "", true
	case 1:
		if rest[0] == "" {
			return "", "", false
		}
		return base, rest[0], true
	default:
		return "", "", false
	}
}

// fields decodes a JSON object one member at a time so that every malformed
// member is reported and presence is known for partial updates.
type fields struct {
	raw  map[string]json.RawMessage
	errs *ValidationErrors
}

func decodeFields(body string, errs *ValidationErrors) fields {
	f := fields{raw: map[string]json.RawMessage{}, errs: errs}
	if strings.TrimSpace(body) == "" {
		return f
	}
	if err := json.Unmarshal([]byte(body), &f.raw); err != nil {
		errs.add("body", "invalid_json", "body must be a JSON object")
	}
	return f
}

func isNull(raw json.RawMessage) bool {
	return strings.TrimSpace(string(raw)) == "null"
}

func isNumberLiteral(raw json.RawMessage) bool {
	s := strings.TrimSpace(string(raw))
	return s != "" && (s[0] == '-' || (s[0] >= '0' && s[0] <= '9'))
}

func (f fields) integer(name string) meterdomain.Nullable[int64] {
	raw, ok := f.raw[name]
	if !ok {
		return meterdomain.Nullable[int64]{}
	}
	if isNull(raw) {
		return meterdomain.Null[int64]()
	}
	var n json.Number
	if isNumberLiteral(raw) && json.Unmarshal(raw, &n) == nil {
		if v, err := n.Int64(); err == nil {
			return meterdomain.Some(v)
		}
	}
	f.errs.add(name, "invalid_type", "must be an integer")
	return meterdomain.Nullable[int64]{}
}

func (f fields) number(name string) meterdomain.Nullable[float64] {
	raw, ok := f.raw[name]
	if !ok {
		return meterdomain.Nullable[float64]{}
	}
	if isNull(raw) {
		return meterdomain.Null[float64]()
	}
	var v float64
	if isNumberLiteral(raw) && json.Unmarshal(raw, &v) == nil {
		return meterdomain.Some(v)
	}
	f.errs.add(name, "invalid_type", "must be a number")
	return meterdomain.Nullable[float64]{}
}

func (f fields) boolean(name string) meterdomain.Nullable[bool] {
	raw, ok := f.raw[name]
	if !ok {
		return meterdomain.Nullable[bool]{}
	}
	if isNull(raw) {
		return meterdomain.Null[bool]()
	}
	var v bool
	if err := json.Unmarshal(raw, &v); err != nil {
		f.errs.add(name, "invalid_type", "must be a boolean")
		return meterdomain.Nullable[bool]{}
	}
	return meterdomain.Some(v)
}

func (f fields) text(name string) meterdomain.Nullable[string] {
	raw, ok := f.raw[name]
	if !ok {
		return meterdomain.Nullable[string]{}
	}
	if isNull(raw) {
		return meterdomain.Null[string]()
	}
	var v string
	if err := json.Unmarshal(raw, &v); err != nil {
		f.errs.add(name, "invalid_type", "must be a string")
		return meterdomain.Nullable[string]{}
	}
	return meterdomain.Some(v)
}

func (f fields) date(name string) meterdomain.Nullable[meterdomain.Date] {
	s := f.text(name)
	if !s.Set || s.Null {
		return meterdomain.Nullable[meterdomain.Date]{Set: s.Set, Null: s.Null}
	}
	d, err := meterdomain.ParseDate(s.Value)
	if err != nil {
		f.errs.add(name, "invalid_date", "must be a date in YYYY-MM-DD format")
		return meterdomain.Nullable[meterdomain.Date]{}
	}
	return meterdomain.Some(d)
}

// trimmed strips surrounding whitespace so length rules see the stored value.
func trimmed(v meterdomain.Nullable[string]) meterdomain.Nullable[string] {
	if v.Set && !v.Null {
		v.Value = strings.TrimSpace(v.Value)
	}
	return v
}

// notNull rejects an explicit null for a field that cannot be cleared.
func notNull[T any](errs *ValidationErrors, name string, v meterdomain.Nullable[T]) *T {
	if v.Set && v.Null {
		errs.add(name, "null", "must not be null")
		return nil
	}
	return v.Ptr()
}

func decodeCreate(r request) (meterdomain.CreateRequest, error) {
	if r.bodyErr != nil {
		return meterdomain.CreateRequest{}, r.bodyErr
	}
	errs := &ValidationErrors{}
	f := decodeFields(r.body, errs)

	req := meterdomain.CreateRequest{
		MeterID:           notNull(errs, "meter_id", f.integer("meter_id")),
		ExternalReference: trimmed(f.text("external_reference")).Ptr(),
		SupplyStartDate:   notNull(errs, "supply_start_date", f.date("supply_start_date")),
		SupplyEndDate:     f.date("supply_end_date").Ptr(),
		Enabled:           notNull(errs, "enabled", f.boolean("enabled")),
		AnnualQuantity:    notNull(errs, "annual_quantity", f.number("annual_quantity")),
	}
	checkConstraints(errs, req.MeterID, req.ExternalReference, req.AnnualQuantity)
	return req, errs.err()
}

func decodeUpdate(r request, id int64) (meterdomain.UpdateRequest, error) {
	if r.bodyErr != nil {
		return meterdomain.UpdateRequest{}, r.bodyErr
	}
	errs := &ValidationErrors{}
	f := decodeFields(r.body, errs)

	req := meterdomain.UpdateRequest{
		ID:                id,
		MeterID:           notNull(errs, "meter_id", f.integer("meter_id")),
		ExternalReference: trimmed(f.text("external_reference")),
		SupplyStartDate:   notNull(errs, "supply_start_date", f.date("supply_start_date")),
		SupplyEndDate:     f.date("supply_end_date"),
		Enabled:           notNull(errs, "enabled", f.boolean("enabled")),
		AnnualQuantity:    notNull(errs, "annual_quantity", f.number("annual_quantity")),
	}
	checkConstraints(errs, req.MeterID, req.ExternalReference.Ptr(), req.AnnualQuantity)
	return req, errs.err()
}

func decodeList(r request) (meterdomain.ListRequest, error) {
	errs := &ValidationErrors{}
	q := r.query

	req := meterdomain.ListRequest{
		OrderBy:  strings.TrimSpace(q["order_by"]),
		BasePath: "/meters",
	}
	if base, _, ok := splitMeterPath(r.rawPath); ok {
		req.BasePath = base
	}

	if v, ok := q["meter_id"]; ok {
		id, err := strconv.ParseInt(strings.TrimSpace(v), 10, 64)
		if err != nil {
			errs.add("meter_id", "invalid_type", "must be an integer")
		} else {
			req.Filter.MeterID = &id
		}
	}
	if v, ok := q["external_reference"]; ok {
		ref := v
		req.Filter.ExternalReference = &ref
	}
	if v, ok := q["enabled"]; ok {
		enabled, err := strconv.ParseBool(strings.TrimSpace(v))
		if err != nil {
			errs.add("enabled", "invalid_type", "must be a boolean")
		} else {
			req.Filter.Enabled = &enabled
		}
	}
	if v, ok := q["supply_start_date"]; ok {
		if d, err := meterdomain.ParseDate(v); err != nil {
			errs.add("supply_start_date", "invalid_date", "must be a date in YYYY-MM-DD format")
		} else {
			req.Filter.SupplyStartDate = &d
		}
	}
	if v, ok := q["supply_end_date"]; ok {
		if d, err := meterdomain.ParseDate(v); err != nil {
			errs.add("supply_end_date", "invalid_date", "must be a date in YYYY-MM-DD format")
		} else {
			req.Filter.SupplyEndDate = &d
		}
	}
	if v, ok := q["annual_quantity"]; ok {
		qty, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		if err != nil || math.IsNaN(qty) || math.IsInf(qty, 0) {
			errs.add("annual_quantity", "invalid_type", "must be a number")
		} else {
			req.Filter.AnnualQuantity = &qty
		}
	}
	if v, ok := q["page"]; ok {
		page, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			errs.add("page", "invalid_type", "must be an integer")
		} else {
			req.Page = &page
		}
	}
	if v, ok := q["page_size"]; ok {
		size, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			errs.add("page_size", "invalid_type", "must be an integer")
		} else {
			req.PageSize = &size
		}
	}

	return req, errs.err()
}
