package services

import (
	"testing"
	"time"

	"gymcore-http-service/internal/domain/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEvaluateMembershipValidityNoMembership(t *testing.T) {
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

	membership, reason := EvaluateMembershipValidity(nil, now)
	assert.Nil(t, membership)
	assert.Equal(t, AccessReasonNoMembership, reason)

	// expired/cancelled状态的会籍不参与判定
	memberships := []models.Membership{
		{Status: models.MembershipStatusExpired, EndDate: now.AddDate(0, 1, 0)},
		{Status: models.MembershipStatusCancelled, EndDate: now.AddDate(0, 1, 0)},
	}
	membership, reason = EvaluateMembershipValidity(memberships, now)
	assert.Nil(t, membership)
	assert.Equal(t, AccessReasonNoMembership, reason)
}

func TestEvaluateMembershipValidityActive(t *testing.T) {
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	memberships := []models.Membership{
		{Status: models.MembershipStatusActive, EndDate: now.AddDate(0, 0, 15)},
	}

	membership, reason := EvaluateMembershipValidity(memberships, now)
	require.NotNil(t, membership)
	assert.Equal(t, AccessReasonValid, reason)
}

func TestEvaluateMembershipValidityPicksLatestEndDate(t *testing.T) {
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	memberships := []models.Membership{
		{Status: models.MembershipStatusActive, EndDate: now.AddDate(0, 0, -5)},
		{Status: models.MembershipStatusActive, EndDate: now.AddDate(0, 0, 30)},
	}

	// 存在end_date更晚的有效会籍时，过期的那条不应主导判定
	membership, reason := EvaluateMembershipValidity(memberships, now)
	require.NotNil(t, membership)
	assert.Equal(t, AccessReasonValid, reason)
	assert.Equal(t, memberships[1].EndDate, membership.EndDate)
}

func TestEvaluateMembershipValidityExpired(t *testing.T) {
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	memberships := []models.Membership{
		{Status: models.MembershipStatusActive, EndDate: now.AddDate(0, 0, -1)},
	}

	membership, reason := EvaluateMembershipValidity(memberships, now)
	require.NotNil(t, membership)
	assert.Equal(t, AccessReasonExpired, reason)
}

func TestEvaluateMembershipValidityFrozen(t *testing.T) {
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	memberships := []models.Membership{
		{Status: models.MembershipStatusFrozen, EndDate: now.AddDate(0, 0, 20)},
	}

	membership, reason := EvaluateMembershipValidity(memberships, now)
	require.NotNil(t, membership)
	assert.Equal(t, AccessReasonFrozen, reason)
}

func TestDecideMemberAccessValid(t *testing.T) {
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	member := &models.Member{Name: "Ravi Kumar", MemberCode: "GYMBLR0000042"}
	membership := &models.Membership{EndDate: now.AddDate(0, 0, 9)}

	decision := DecideMemberAccess(AccessReasonValid, member, membership, "Gold Annual", 5, now)

	assert.Equal(t, models.AccessActionOpen, decision.Action)
	assert.Equal(t, LEDGreen, decision.LEDColor)
	assert.Equal(t, 5, decision.RelayDelay)
	assert.Equal(t, "Ravi Kumar", decision.PersonName)
	assert.Equal(t, "GYMBLR0000042", decision.MemberCode)
	assert.Equal(t, "Gold Annual", decision.PlanName)
	require.NotNil(t, decision.DaysRemaining)
	assert.Equal(t, 10, *decision.DaysRemaining)
	assert.Contains(t, decision.Message, "Ravi Kumar")
	assert.Contains(t, decision.Message, "Gold Annual")
}

func TestDecideMemberAccessAlreadyCheckedInStillOpens(t *testing.T) {
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	member := &models.Member{Name: "Ravi Kumar", MemberCode: "GYMBLR0000042"}
	membership := &models.Membership{EndDate: now.AddDate(0, 0, 9)}

	decision := DecideMemberAccess(AccessReasonAlreadyCheckedIn, member, membership, "Gold Annual", 5, now)

	assert.Equal(t, models.AccessActionOpen, decision.Action)
	assert.Equal(t, LEDGreen, decision.LEDColor)
	assert.Contains(t, decision.Message, "Welcome back")
}

func TestDecideMemberAccessDeniedBranches(t *testing.T) {
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	member := &models.Member{Name: "Ravi Kumar", MemberCode: "GYMBLR0000042"}

	cases := []struct {
		reason  string
		message string
	}{
		{AccessReasonWrongBranch, "another branch"},
		{AccessReasonExpired, "expired"},
		{AccessReasonFrozen, "frozen"},
		{AccessReasonNoMembership, "No active membership"},
		{AccessReasonUnknown, "see reception"},
	}

	for _, tc := range cases {
		decision := DecideMemberAccess(tc.reason, member, nil, "", 5, now)
		assert.Equal(t, models.AccessActionDenied, decision.Action, tc.reason)
		assert.Equal(t, LEDRed, decision.LEDColor, tc.reason)
		assert.Equal(t, 0, decision.RelayDelay, tc.reason)
		assert.Contains(t, decision.Message, tc.message, tc.reason)
		assert.Nil(t, decision.DaysRemaining, tc.reason)
	}
}

func TestDecideStaffAccess(t *testing.T) {
	staff := &models.Staff{Name: "Priya"}

	decision := DecideStaffAccess(AccessReasonValid, staff, 3)
	assert.Equal(t, models.AccessActionOpen, decision.Action)
	assert.Equal(t, LEDGreen, decision.LEDColor)
	assert.Equal(t, 3, decision.RelayDelay)
	assert.Contains(t, decision.Message, "Priya")

	decision = DecideStaffAccess(AccessReasonWrongBranch, staff, 3)
	assert.Equal(t, models.AccessActionDenied, decision.Action)
	assert.Equal(t, LEDRed, decision.LEDColor)

	decision = DecideStaffAccess(AccessReasonInactive, staff, 3)
	assert.Equal(t, models.AccessActionDenied, decision.Action)
	assert.Equal(t, LEDRed, decision.LEDColor)
}

func TestDecideUnknownPerson(t *testing.T) {
	decision := DecideUnknownPerson()
	assert.Equal(t, models.AccessActionDenied, decision.Action)
	assert.Equal(t, LEDWhite, decision.LEDColor)
	assert.Contains(t, decision.Message, "register")
	assert.Empty(t, decision.PersonName)
}

func TestIsDuplicateKeyError(t *testing.T) {
	assert.False(t, isDuplicateKeyError(nil))
	assert.False(t, isDuplicateKeyError(assert.AnError))
	assert.True(t, isDuplicateKeyError(errDuplicateEntry))
}

// errDuplicateEntry 模拟MySQL 1062错误文案
var errDuplicateEntry = errDuplicate{}

type errDuplicate struct{}

func (errDuplicate) Error() string {
	return "Error 1062 (23000): Duplicate entry '1-2026-03-10' for key 'idx_membership_date'"
}
