package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"net/url"
	"reflect"
	"strings"

	"github.com/dyluth/quill/pkg/posts"
)

// maxBodyBytes caps request bodies.
const maxBodyBytes = 1 << 20

// errBadBody marks a body that could not be parsed at all.
type errBadBody struct{ msg string }

func (e *errBadBody) Error() string { return e.msg }

func isForm(r *http.Request) bool {
	ct, _, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
	return err == nil && ct == "application/x-www-form-urlencoded"
}

// decodeJSON decodes the body into v. An empty body leaves v untouched so
// that validation, not parsing, reports the missing fields. Anything after
// the first JSON value is rejected.
func decodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(v); err != nil {
		if errors.Is(err, io.EOF) {
			return nil
		}
		var typeErr *json.UnmarshalTypeError
		if errors.As(err, &typeErr) {
			return &errBadBody{msg: typeMismatchMessage(typeErr)}
		}
		return &errBadBody{msg: "invalid JSON: " + err.Error()}
	}
	if err := dec.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
		return &errBadBody{msg: "invalid JSON: unexpected data after top-level value"}
	}
	return nil
}

// typeMismatchMessage describes a wrongly typed field in JSON terms,
// e.g. "title must be a string".
func typeMismatchMessage(err *json.UnmarshalTypeError) string {
	if err.Field == "" {
		return "invalid JSON: request body must be an object"
	}

	kind := "a valid value"
	switch err.Type.Kind() {
	case reflect.String:
		kind = "a string"
	case reflect.Bool:
		kind = "a boolean"
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64:
		kind = "a number"
	case reflect.Slice, reflect.Array:
		kind = "an array"
	case reflect.Map, reflect.Struct:
		kind = "an object"
	}
	return fmt.Sprintf("%s must be %s", err.Field, kind)
}

func parseForm(w http.ResponseWriter, r *http.Request) (url.Values, error) {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := r.ParseForm(); err != nil {
		return nil, &errBadBody{msg: fmt.Sprintf("invalid form body: %v", err)}
	}
	return r.PostForm, nil
}

// formField returns the first value for key, or nil when key was not sent.
func formField(form url.Values, key string) *string {
	vals, ok := form[key]
	if !ok || len(vals) == 0 {
		return nil
	}
	v := vals[0]
	return &v
}

// formTags accepts both tags=a,b and repeated tags=a&tags=b.
func formTags(form url.Values) *posts.Tags {
	vals, ok := form["tags"]
	if !ok {
		return nil
	}
	return posts.TagsOf(strings.Join(vals, ","))
}

func decodeInput(w http.ResponseWriter, r *http.Request) (posts.Input, error) {
	var in posts.Input
	if !isForm(r) {
		return in, decodeJSON(w, r, &in)
	}

	form, err := parseForm(w, r)
	if err != nil {
		return in, err
	}
	in.Title = form.Get("title")
	in.Body = form.Get("body")
	in.Excerpt = formField(form, "excerpt")
	in.Tags = formTags(form)
	return in, nil
}

func decodePatch(w http.ResponseWriter, r *http.Request) (posts.Patch, error) {
	var p posts.Patch
	if !isForm(r) {
		return p, decodeJSON(w, r, &p)
	}

	form, err := parseForm(w, r)
	if err != nil {
		return p, err
	}
	p.Title = formField(form, "title")
	p.Body = formField(form, "body")
	p.Excerpt = formField(form, "excerpt")
	p.Tags = formTags(form)
	return p, nil
}
