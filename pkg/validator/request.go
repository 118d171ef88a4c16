package validator

import (
	"slices"
	"strconv"
	"strings"

	"github.com/yi-nology/blender_board/pkg/common"
)

const maxListLimit = 100

// Sort keys accepted by list endpoints.
const (
	SortID        = "id"
	SortCreatedAt = "createdAt"
	SortTitle     = "title"

	OrderAsc  = "asc"
	OrderDesc = "desc"
)

// ListOptions is the validated form of a list query.
// Limit and Page are zero when pagination is off.
type ListOptions struct {
	Q      string
	Author string
	Limit  int
	Page   int
	Sort   string
	Order  string
}

// CreateFields holds the text fields of a create request.
type CreateFields struct {
	Title       string
	Author      string
	ModelIDs    []uint
	HasModelIDs bool
}

// UpdateFields holds the text fields of a partial update. Nil means untouched.
type UpdateFields struct {
	Title          *string
	Author         *string
	ModelIDs       []uint
	HasModelIDs    bool
	ClearPreview   bool
	ClearThumbnail bool
}

// Empty reports whether no text field asks for a change.
func (f UpdateFields) Empty() bool {
	return f.Title == nil && f.Author == nil && !f.HasModelIDs && !f.ClearPreview && !f.ClearThumbnail
}

// ParseID parses a path id.
func ParseID(raw string) (uint, error) {
	id, err := strconv.ParseUint(strings.TrimSpace(raw), 10, 32)
	if err != nil || id == 0 {
		return 0, common.NewValidationError("id must be a positive integer.")
	}
	return uint(id), nil
}

// ParseListQuery validates list query parameters.
func ParseListQuery(values map[string][]string) (ListOptions, error) {
	opts := ListOptions{Sort: SortID, Order: OrderDesc}

	opts.Q = first(values, "q")
	opts.Author = first(values, "author")

	// a blank page or limit still counts as given
	if _, present := values["limit"]; present {
		limit, err := strconv.Atoi(first(values, "limit"))
		if err != nil || limit <= 0 || limit > maxListLimit {
			return ListOptions{}, common.NewValidationError("limit must be between 1 and 100.")
		}
		opts.Limit = limit
	}

	if _, present := values["page"]; present {
		if opts.Limit == 0 {
			return ListOptions{}, common.NewValidationError("page requires limit.")
		}
		page, err := strconv.Atoi(first(values, "page"))
		if err != nil || page <= 0 {
			return ListOptions{}, common.NewValidationError("page must be a positive integer.")
		}
		opts.Page = page
	} else if opts.Limit > 0 {
		opts.Page = 1
	}

	if raw, ok := lookup(values, "sort"); ok {
		if !slices.Contains([]string{SortID, SortCreatedAt, SortTitle}, raw) {
			return ListOptions{}, common.NewValidationError("sort must be one of id, createdAt, title.")
		}
		opts.Sort = raw
	}

	if raw, ok := lookup(values, "order"); ok {
		raw = strings.ToLower(raw)
		if raw != OrderAsc && raw != OrderDesc {
			return ListOptions{}, common.NewValidationError("order must be asc or desc.")
		}
		opts.Order = raw
	}

	return opts, nil
}

// ParseCreateFields validates the text fields of a create request.
// modelIds is only read when allowModelIDs is set.
func ParseCreateFields(values map[string][]string, allowModelIDs bool) (CreateFields, error) {
	var fields CreateFields

	title, ok := lookup(values, "title")
	if !ok {
		return fields, common.NewValidationError("title is required and must be a non-empty string.")
	}
	author, ok := lookup(values, "author")
	if !ok {
		return fields, common.NewValidationError("author is required and must be a non-empty string.")
	}
	fields.Title = title
	fields.Author = author

	if allowModelIDs {
		ids, present, err := ParseModelIDs(values)
		if err != nil {
			return CreateFields{}, err
		}
		fields.ModelIDs = ids
		fields.HasModelIDs = present
	}
	return fields, nil
}

// ParseUpdateFields validates a partial update. hasFile tells whether any
// file field arrived with the request; a request changing nothing fails.
func ParseUpdateFields(values map[string][]string, hasFile, allowModelIDs, allowAssetFlags bool) (UpdateFields, error) {
	var fields UpdateFields

	for _, name := range []string{"title", "author"} {
		if _, present := values[name]; !present {
			continue
		}
		v, ok := lookup(values, name)
		if !ok {
			return UpdateFields{}, common.NewValidationError(name + " must be a non-empty string when provided.")
		}
		if name == "title" {
			fields.Title = &v
		} else {
			fields.Author = &v
		}
	}

	if allowModelIDs {
		ids, present, err := ParseModelIDs(values)
		if err != nil {
			return UpdateFields{}, err
		}
		fields.ModelIDs = ids
		fields.HasModelIDs = present
	}

	if allowAssetFlags {
		var err error
		if fields.ClearPreview, err = parseFlag(values, "clearPreview"); err != nil {
			return UpdateFields{}, err
		}
		if fields.ClearThumbnail, err = parseFlag(values, "clearThumbnail"); err != nil {
			return UpdateFields{}, err
		}
	}

	if fields.Empty() && !hasFile {
		if allowModelIDs {
			return UpdateFields{}, common.NewValidationError("At least one of title, author, file, modelIds is required.")
		}
		return UpdateFields{}, common.NewValidationError("At least one of title, author, file is required.")
	}
	return fields, nil
}

// ParseModelIDs reads modelIds as repeated fields, a comma separated list or
// a JSON-style array. A present but empty value yields an empty, non-nil set.
// The result is de-duplicated and sorted.
func ParseModelIDs(values map[string][]string) ([]uint, bool, error) {
	raw, present := values["modelIds"]
	if more, ok := values["modelIds[]"]; ok {
		raw = append(append([]string{}, raw...), more...)
		present = true
	}
	if !present {
		return nil, false, nil
	}

	ids := []uint{}
	for _, value := range raw {
		value = strings.TrimSpace(value)
		value = strings.TrimSuffix(strings.TrimPrefix(value, "["), "]")
		for _, part := range strings.Split(value, ",") {
			part = strings.Trim(strings.TrimSpace(part), `"`)
			if part == "" {
				continue
			}
			id, err := strconv.ParseUint(part, 10, 32)
			if err != nil || id == 0 {
				return nil, true, common.NewValidationError("modelIds must contain positive integers.")
			}
			ids = append(ids, uint(id))
		}
	}
	return NormalizeIDs(ids), true, nil
}

// NormalizeIDs returns ids de-duplicated and sorted ascending.
func NormalizeIDs(ids []uint) []uint {
	out := slices.Clone(ids)
	slices.Sort(out)
	out = slices.Compact(out)
	if out == nil {
		out = []uint{}
	}
	return out
}

func parseFlag(values map[string][]string, name string) (bool, error) {
	raw, ok := lookup(values, name)
	if !ok {
		return false, nil
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return false, common.NewValidationError(name + " must be a boolean.")
	}
	return v, nil
}

// lookup returns the trimmed first value; ok is false when absent or blank.
func lookup(values map[string][]string, name string) (string, bool) {
	v := first(values, name)
	return v, v != ""
}

func first(values map[string][]string, name string) string {
	if vs := values[name]; len(vs) > 0 {
		return strings.TrimSpace(vs[0])
	}
	return ""
}
