package services

import (
	"testing"
	"time"

	"gymcore-http-service/internal/domain/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func intPtr(v int) *int {
	return &v
}

func TestPeriodStartDaily(t *testing.T) {
	loc, err := time.LoadLocation("Asia/Kolkata")
	require.NoError(t, err)

	// 2026-03-10 23:30 当地时间，日窗口起点应为当天零点
	now := time.Date(2026, 3, 10, 23, 30, 0, 0, loc)
	start, ok := PeriodStart(models.FrequencyDaily, time.Time{}, now, loc)
	require.True(t, ok)
	assert.Equal(t, time.Date(2026, 3, 10, 0, 0, 0, 0, loc), start)
}

func TestPeriodStartDailyCrossesUTCDate(t *testing.T) {
	loc, err := time.LoadLocation("Asia/Kolkata")
	require.NoError(t, err)

	// UTC时间还在3月9日，但Kolkata已是3月10日凌晨，窗口起点必须按分店时区算
	now := time.Date(2026, 3, 9, 20, 0, 0, 0, time.UTC)
	start, ok := PeriodStart(models.FrequencyDaily, time.Time{}, now, loc)
	require.True(t, ok)
	assert.Equal(t, time.Date(2026, 3, 10, 0, 0, 0, 0, loc), start)
}

func TestPeriodStartWeekly(t *testing.T) {
	loc := time.UTC

	// 2026-03-11是周三，周窗口起点应回退到周日2026-03-08零点
	now := time.Date(2026, 3, 11, 15, 0, 0, 0, loc)
	start, ok := PeriodStart(models.FrequencyWeekly, time.Time{}, now, loc)
	require.True(t, ok)
	assert.Equal(t, time.Date(2026, 3, 8, 0, 0, 0, 0, loc), start)
	assert.Equal(t, time.Sunday, start.Weekday())
}

func TestPeriodStartWeeklyOnSunday(t *testing.T) {
	loc := time.UTC

	// 周日当天不回退
	now := time.Date(2026, 3, 8, 9, 0, 0, 0, loc)
	start, ok := PeriodStart(models.FrequencyWeekly, time.Time{}, now, loc)
	require.True(t, ok)
	assert.Equal(t, time.Date(2026, 3, 8, 0, 0, 0, 0, loc), start)
}

func TestPeriodStartMonthly(t *testing.T) {
	loc, err := time.LoadLocation("Asia/Kolkata")
	require.NoError(t, err)

	now := time.Date(2026, 2, 28, 18, 0, 0, 0, loc)
	start, ok := PeriodStart(models.FrequencyMonthly, time.Time{}, now, loc)
	require.True(t, ok)
	assert.Equal(t, time.Date(2026, 2, 1, 0, 0, 0, 0, loc), start)
}

func TestPeriodStartPerMembership(t *testing.T) {
	loc := time.UTC
	membershipStart := time.Date(2026, 1, 15, 0, 0, 0, 0, loc)

	now := time.Date(2026, 3, 11, 12, 0, 0, 0, loc)
	start, ok := PeriodStart(models.FrequencyPerMembership, membershipStart, now, loc)
	require.True(t, ok)
	assert.Equal(t, membershipStart, start)
}

func TestPeriodStartUnlimitedHasNoWindow(t *testing.T) {
	_, ok := PeriodStart(models.FrequencyUnlimited, time.Time{}, time.Now(), time.UTC)
	assert.False(t, ok)
}

func TestCalculateBenefitBalancesUnlimited(t *testing.T) {
	benefits := []models.PlanBenefit{
		{BenefitType: "gym_access", Frequency: models.FrequencyUnlimited},
	}
	records := []models.BenefitUsageRecord{
		{BenefitType: "gym_access", UsageDate: time.Date(2025, 1, 1, 8, 0, 0, 0, time.UTC), UsageCount: 1},
		{BenefitType: "gym_access", UsageDate: time.Date(2026, 3, 10, 8, 0, 0, 0, time.UTC), UsageCount: 1},
	}

	balances := CalculateBenefitBalances(benefits, records, time.Time{}, time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC), time.UTC)
	require.Len(t, balances, 1)

	b := balances[0]
	assert.True(t, b.IsUnlimited)
	assert.Nil(t, b.Remaining)
	// 不限次数时不做窗口过滤，历史记录全部计入
	assert.Equal(t, 2, b.Used)
}

func TestCalculateBenefitBalancesDailyWindow(t *testing.T) {
	loc := time.UTC
	now := time.Date(2026, 3, 10, 18, 0, 0, 0, loc)
	benefits := []models.PlanBenefit{
		{BenefitType: "sauna_session", Frequency: models.FrequencyDaily, LimitCount: intPtr(2)},
	}
	records := []models.BenefitUsageRecord{
		// 昨天的记录不计入今日窗口
		{BenefitType: "sauna_session", UsageDate: time.Date(2026, 3, 9, 20, 0, 0, 0, loc), UsageCount: 1},
		{BenefitType: "sauna_session", UsageDate: time.Date(2026, 3, 10, 9, 0, 0, 0, loc), UsageCount: 1},
		// 其他权益的记录不计入
		{BenefitType: "ice_bath", UsageDate: time.Date(2026, 3, 10, 10, 0, 0, 0, loc), UsageCount: 1},
	}

	balances := CalculateBenefitBalances(benefits, records, time.Time{}, now, loc)
	require.Len(t, balances, 1)

	b := balances[0]
	assert.False(t, b.IsUnlimited)
	assert.Equal(t, 1, b.Used)
	require.NotNil(t, b.Remaining)
	assert.Equal(t, 1, *b.Remaining)
}

func TestCalculateBenefitBalancesRemainingClampedAtZero(t *testing.T) {
	loc := time.UTC
	now := time.Date(2026, 3, 10, 18, 0, 0, 0, loc)
	benefits := []models.PlanBenefit{
		{BenefitType: "ice_bath", Frequency: models.FrequencyMonthly, LimitCount: intPtr(2)},
	}
	records := []models.BenefitUsageRecord{
		{BenefitType: "ice_bath", UsageDate: time.Date(2026, 3, 2, 9, 0, 0, 0, loc), UsageCount: 2},
		{BenefitType: "ice_bath", UsageDate: time.Date(2026, 3, 5, 9, 0, 0, 0, loc), UsageCount: 2},
	}

	balances := CalculateBenefitBalances(benefits, records, time.Time{}, now, loc)
	require.Len(t, balances, 1)

	b := balances[0]
	assert.Equal(t, 4, b.Used)
	require.NotNil(t, b.Remaining)
	// 超额使用后remaining不为负
	assert.Equal(t, 0, *b.Remaining)
}

func TestCalculateBenefitBalancesZeroUsageCountCountsAsOne(t *testing.T) {
	loc := time.UTC
	now := time.Date(2026, 3, 10, 18, 0, 0, 0, loc)
	benefits := []models.PlanBenefit{
		{BenefitType: "sauna_session", Frequency: models.FrequencyDaily, LimitCount: intPtr(3)},
	}
	records := []models.BenefitUsageRecord{
		{BenefitType: "sauna_session", UsageDate: time.Date(2026, 3, 10, 9, 0, 0, 0, loc), UsageCount: 0},
		{BenefitType: "sauna_session", UsageDate: time.Date(2026, 3, 10, 11, 0, 0, 0, loc), UsageCount: -2},
	}

	balances := CalculateBenefitBalances(benefits, records, time.Time{}, now, loc)
	require.Len(t, balances, 1)
	assert.Equal(t, 2, balances[0].Used)
}

func TestCalculateBenefitBalancesPerMembershipWindow(t *testing.T) {
	loc := time.UTC
	membershipStart := time.Date(2026, 2, 1, 0, 0, 0, 0, loc)
	now := time.Date(2026, 3, 10, 18, 0, 0, 0, loc)
	benefits := []models.PlanBenefit{
		{BenefitType: "pt_trial", Frequency: models.FrequencyPerMembership, LimitCount: intPtr(1)},
	}
	records := []models.BenefitUsageRecord{
		// 会籍开始前的记录（如旧会籍遗留）不计入
		{BenefitType: "pt_trial", UsageDate: time.Date(2026, 1, 20, 9, 0, 0, 0, loc), UsageCount: 1},
		{BenefitType: "pt_trial", UsageDate: time.Date(2026, 2, 15, 9, 0, 0, 0, loc), UsageCount: 1},
	}

	balances := CalculateBenefitBalances(benefits, records, membershipStart, now, loc)
	require.Len(t, balances, 1)

	b := balances[0]
	assert.Equal(t, 1, b.Used)
	require.NotNil(t, b.Remaining)
	assert.Equal(t, 0, *b.Remaining)
}

func TestCalculateBenefitBalancesNilLimitIsUnlimited(t *testing.T) {
	benefits := []models.PlanBenefit{
		{BenefitType: "gym_access", Frequency: models.FrequencyDaily, LimitCount: nil},
	}

	balances := CalculateBenefitBalances(benefits, nil, time.Time{}, time.Now(), time.UTC)
	require.Len(t, balances, 1)
	assert.True(t, balances[0].IsUnlimited)
	assert.Nil(t, balances[0].Remaining)
}

func TestCalculateBenefitBalancesNilLocationFallsBackToUTC(t *testing.T) {
	now := time.Date(2026, 3, 10, 1, 0, 0, 0, time.UTC)
	benefits := []models.PlanBenefit{
		{BenefitType: "sauna_session", Frequency: models.FrequencyDaily, LimitCount: intPtr(1)},
	}
	records := []models.BenefitUsageRecord{
		// UTC的3月9日晚，nil时区下按UTC零点切窗，不计入3月10日
		{BenefitType: "sauna_session", UsageDate: time.Date(2026, 3, 9, 23, 0, 0, 0, time.UTC), UsageCount: 1},
	}

	balances := CalculateBenefitBalances(benefits, records, time.Time{}, now, nil)
	require.Len(t, balances, 1)
	assert.Equal(t, 0, balances[0].Used)
	require.NotNil(t, balances[0].Remaining)
	assert.Equal(t, 1, *balances[0].Remaining)
}

func TestCalculateBenefitBalancesMultipleBenefits(t *testing.T) {
	loc := time.UTC
	now := time.Date(2026, 3, 11, 12, 0, 0, 0, loc) // 周三
	benefits := []models.PlanBenefit{
		{BenefitType: "gym_access", Frequency: models.FrequencyUnlimited},
		{BenefitType: "sauna_session", Frequency: models.FrequencyWeekly, LimitCount: intPtr(3)},
	}
	records := []models.BenefitUsageRecord{
		{BenefitType: "gym_access", UsageDate: time.Date(2026, 3, 10, 8, 0, 0, 0, loc), UsageCount: 1},
		// 上周六的记录不在本周（周日起算）窗口内
		{BenefitType: "sauna_session", UsageDate: time.Date(2026, 3, 7, 8, 0, 0, 0, loc), UsageCount: 1},
		{BenefitType: "sauna_session", UsageDate: time.Date(2026, 3, 9, 8, 0, 0, 0, loc), UsageCount: 1},
	}

	balances := CalculateBenefitBalances(benefits, records, time.Time{}, now, loc)
	require.Len(t, balances, 2)

	assert.True(t, balances[0].IsUnlimited)
	assert.Equal(t, 1, balances[0].Used)

	assert.Equal(t, "sauna_session", balances[1].BenefitType)
	assert.Equal(t, 1, balances[1].Used)
	require.NotNil(t, balances[1].Remaining)
	assert.Equal(t, 2, *balances[1].Remaining)
}
