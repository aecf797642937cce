package models

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNullableStringDistinguishesAbsentAndNull(t *testing.T) {
	var req UpdateBudgetItemRequest

	require.NoError(t, json.Unmarshal([]byte(`{"item":"rent"}`), &req))
	assert.False(t, req.CategoryID.Set)

	req = UpdateBudgetItemRequest{}
	require.NoError(t, json.Unmarshal([]byte(`{"categoryId":null}`), &req))
	assert.True(t, req.CategoryID.Set)
	assert.Nil(t, req.CategoryID.Value)

	req = UpdateBudgetItemRequest{}
	require.NoError(t, json.Unmarshal([]byte(`{"categoryId":"c1"}`), &req))
	assert.True(t, req.CategoryID.Set)
	require.NotNil(t, req.CategoryID.Value)
	assert.Equal(t, "c1", *req.CategoryID.Value)
}

func TestNullableStringRejectsNonString(t *testing.T) {
	var req UpdateExpenseRequest
	assert.Error(t, json.Unmarshal([]byte(`{"creditCardId":42}`), &req))
}

func TestPasswordResetUsable(t *testing.T) {
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	pr := PasswordReset{ExpiresAt: now.Add(time.Hour)}

	assert.True(t, pr.Usable(now))
	assert.True(t, pr.Usable(pr.ExpiresAt), "valid up to and including expiry")
	assert.False(t, pr.Usable(now.Add(2*time.Hour)))

	pr.Used = true
	assert.False(t, pr.Usable(now))
}

func TestUserPublicOmitsHash(t *testing.T) {
	name := "Alice"
	u := User{ID: "u1", Email: "alice@example.com", Name: &name, PasswordHash: "$2a$10$x"}

	b, err := json.Marshal(u.Public())
	require.NoError(t, err)
	assert.JSONEq(t, `{"id":"u1","email":"alice@example.com","name":"Alice"}`, string(b))
}

func TestBudgetRecalculate(t *testing.T) {
	b := Budget{Items: []BudgetItem{{Amount: 100.5}, {Amount: 49.5}}}
	b.Recalculate()
	assert.InDelta(t, 150.0, b.Total, 0.0001)
}

func TestExpensePatchEmpty(t *testing.T) {
	assert.True(t, (&ExpensePatch{}).Empty())
	assert.False(t, (&ExpensePatch{CategoryID: NullableString{Set: true}}).Empty())
}
