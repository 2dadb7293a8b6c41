package services

import (
	"testing"
	"time"

	"gymcore-http-service/internal/domain/models"

	"github.com/stretchr/testify/assert"
)

func TestNeedsExpiryReminderWithinWindow(t *testing.T) {
	now := time.Date(2026, 3, 10, 6, 0, 0, 0, time.UTC)
	deadline := now.AddDate(0, 0, expiringSoonDays)

	m := models.Membership{
		Status:  models.MembershipStatusActive,
		EndDate: now.AddDate(0, 0, 3),
	}
	assert.True(t, NeedsExpiryReminder(&m, now, deadline))
}

func TestNeedsExpiryReminderNotRepeatedAcrossSweeps(t *testing.T) {
	now := time.Date(2026, 3, 10, 6, 0, 0, 0, time.UTC)
	deadline := now.AddDate(0, 0, expiringSoonDays)
	notifiedAt := now.Add(-time.Hour)

	// 上个扫描周期已提醒过的会籍不再重复投递
	m := models.Membership{
		Status:           models.MembershipStatusActive,
		EndDate:          now.AddDate(0, 0, 3),
		ExpiryNotifiedAt: &notifiedAt,
	}
	assert.False(t, NeedsExpiryReminder(&m, now, deadline))
}

func TestNeedsExpiryReminderOutsideWindow(t *testing.T) {
	now := time.Date(2026, 3, 10, 6, 0, 0, 0, time.UTC)
	deadline := now.AddDate(0, 0, expiringSoonDays)

	// 到期日在窗口之外
	far := models.Membership{
		Status:  models.MembershipStatusActive,
		EndDate: now.AddDate(0, 0, expiringSoonDays+10),
	}
	assert.False(t, NeedsExpiryReminder(&far, now, deadline))

	// 已过期的不再提醒
	past := models.Membership{
		Status:  models.MembershipStatusActive,
		EndDate: now.AddDate(0, 0, -1),
	}
	assert.False(t, NeedsExpiryReminder(&past, now, deadline))
}

func TestNeedsExpiryReminderOnlyActive(t *testing.T) {
	now := time.Date(2026, 3, 10, 6, 0, 0, 0, time.UTC)
	deadline := now.AddDate(0, 0, expiringSoonDays)

	m := models.Membership{
		Status:  models.MembershipStatusFrozen,
		EndDate: now.AddDate(0, 0, 3),
	}
	assert.False(t, NeedsExpiryReminder(&m, now, deadline))
}
