package keys

import (
	"github.com/google/uuid"

	"github.com/mplewis/layerkv"
)

// UUIDTransform uses uuid.UUID keys over their canonical string form.
type UUIDTransform struct{}

// UUID returns a transform from uuid.UUID keys to string ids.
func UUID() UUIDTransform {
	return UUIDTransform{}
}

func (UUIDTransform) EncodeKey(key uuid.UUID) (string, error) {
	return key.String(), nil
}

// DecodeKey accepts only the canonical lowercase hyphenated form, so that
// the round trip is exact.
func (UUIDTransform) DecodeKey(id string) (uuid.UUID, error) {
	u, err := uuid.Parse(id)
	if err != nil {
		return uuid.Nil, layerkv.InvalidKey(id, err.Error())
	}
	if u.String() != id {
		return uuid.Nil, layerkv.InvalidKey(id, "not in canonical form")
	}
	return u, nil
}
