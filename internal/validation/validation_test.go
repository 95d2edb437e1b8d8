package validation

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type registration struct {
	Date    string   `json:"date" validate:"required,slotdate"`
	Time    string   `json:"time" validate:"required,slottime"`
	Phone   string   `json:"phone" validate:"required,phone"`
	Gender  string   `json:"gender" validate:"required,oneof=MALE FEMALE"`
	Members []member `json:"members" validate:"required,min=1,max=4,dive"`
}

type member struct {
	Age int `json:"age" validate:"required,min=18"`
}

func valid() registration {
	return registration{
		Date:    "2025-06-01",
		Time:    "19:00",
		Phone:   "010-1234-5678",
		Gender:  "MALE",
		Members: []member{{Age: 22}},
	}
}

func TestStruct(t *testing.T) {
	ctx := context.Background()
	require.NoError(t, Struct(ctx, valid()))

	tests := []struct {
		name   string
		mutate func(*registration)
		field  string
		msg    string
	}{
		{"missing date", func(r *registration) { r.Date = "" }, "date", "date is required"},
		{"bad date", func(r *registration) { r.Date = "2025/06/01" }, "date", "date must be a date in YYYY-MM-DD format"},
		{"unknown time", func(r *registration) { r.Time = "17:00" }, "time", ""},
		{"bad phone", func(r *registration) { r.Phone = "12345" }, "phone", "phone must be a mobile phone number"},
		{"bad gender", func(r *registration) { r.Gender = "X" }, "gender", "gender must be one of [MALE FEMALE]"},
		{"too many members", func(r *registration) { r.Members = make([]member, 5) }, "members", "members must be at most 4"},
		{"underage member", func(r *registration) { r.Members = []member{{Age: 17}} }, "members[0].age", "members[0].age must be at least 18"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := valid()
			tt.mutate(&r)
			err := Struct(ctx, r)
			require.ErrorIs(t, err, ErrInvalid)
			var verr *Error
			require.ErrorAs(t, err, &verr)
			assert.Equal(t, tt.field, verr.Field)
			if tt.msg != "" {
				assert.Equal(t, tt.msg, verr.Message)
			}
		})
	}
}

func TestNormalizePhone(t *testing.T) {
	assert.Equal(t, "01012345678", NormalizePhone("010-1234-5678"))
	assert.Equal(t, "01012345678", NormalizePhone(" 010 1234 5678 "))
	assert.Equal(t, "", NormalizePhone("--"))
}
