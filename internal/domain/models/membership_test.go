package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestMembershipDaysRemaining(t *testing.T) {
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

	m := Membership{EndDate: now.AddDate(0, 0, 30)}
	assert.Equal(t, 31, m.DaysRemaining(now))

	// 当天到期仍算剩余1天
	m = Membership{EndDate: now.Add(6 * time.Hour)}
	assert.Equal(t, 1, m.DaysRemaining(now))

	// 已过期归零
	m = Membership{EndDate: now.AddDate(0, 0, -1)}
	assert.Equal(t, 0, m.DaysRemaining(now))
}

func TestBranchLocation(t *testing.T) {
	b := Branch{Timezone: "Asia/Kolkata"}
	assert.Equal(t, "Asia/Kolkata", b.Location().String())

	// 时区缺失或非法时回退UTC
	b = Branch{}
	assert.Equal(t, time.UTC, b.Location())

	b = Branch{Timezone: "Not/AZone"}
	assert.Equal(t, time.UTC, b.Location())
}

func TestPlanBenefitIsUnlimited(t *testing.T) {
	limit := 3
	assert.False(t, (&PlanBenefit{Frequency: FrequencyDaily, LimitCount: &limit}).IsUnlimited())
	assert.True(t, (&PlanBenefit{Frequency: FrequencyUnlimited, LimitCount: &limit}).IsUnlimited())
	assert.True(t, (&PlanBenefit{Frequency: FrequencyMonthly, LimitCount: nil}).IsUnlimited())
}
