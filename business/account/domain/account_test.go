package domain

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

func TestRewards_AddAndClaim(t *testing.T) {
	at := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	var r Rewards
	r = r.Add(ReferralBonus, RewardReferral, at)
	r = r.Add(DailyLoginBonus, RewardDailyLogin, at.Add(time.Hour))

	if !r.Total.Equal(decimal.NewFromInt(51)) {
		t.Errorf("total = %s, want 51", r.Total)
	}
	if !r.Pending.Equal(decimal.NewFromInt(51)) {
		t.Errorf("pending = %s, want 51", r.Pending)
	}
	if len(r.History) != 2 || r.History[0].Type != RewardDailyLogin {
		t.Fatalf("history not newest first: %+v", r.History)
	}

	claimed := r.Claim()
	if !claimed.Pending.IsZero() {
		t.Errorf("pending after claim = %s", claimed.Pending)
	}
	if !claimed.Claimed.Equal(decimal.NewFromInt(51)) {
		t.Errorf("claimed = %s, want 51", claimed.Claimed)
	}
	if !claimed.Total.Equal(r.Total) {
		t.Errorf("claim changed total")
	}
}

func TestRewards_AddDoesNotAliasHistory(t *testing.T) {
	base := Rewards{}.Add(decimal.NewFromInt(1), RewardStaking, time.Now())
	a := base.Add(decimal.NewFromInt(2), RewardStaking, time.Now())
	b := base.Add(decimal.NewFromInt(3), RewardLiquidity, time.Now())

	if !a.History[0].Amount.Equal(decimal.NewFromInt(2)) || !b.History[0].Amount.Equal(decimal.NewFromInt(3)) {
		t.Fatalf("histories alias: a=%v b=%v", a.History, b.History)
	}
	if len(base.History) != 1 {
		t.Fatalf("base history mutated: %v", base.History)
	}
}

func TestSettingsPatch_Apply(t *testing.T) {
	off := false
	light := ThemeLight
	eur := "EUR"

	tests := []struct {
		name  string
		patch SettingsPatch
		want  Settings
	}{
		{
			name:  "empty patch keeps defaults",
			patch: SettingsPatch{},
			want:  DefaultSettings(),
		},
		{
			name:  "partial",
			patch: SettingsPatch{SoundAlerts: &off, Theme: &light},
			want:  Settings{Notifications: true, SoundAlerts: false, HapticFeedback: true, Theme: ThemeLight, Currency: "USD"},
		},
		{
			name:  "currency",
			patch: SettingsPatch{Currency: &eur},
			want:  Settings{Notifications: true, SoundAlerts: true, HapticFeedback: true, Theme: ThemeDark, Currency: "EUR"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.patch.Apply(DefaultSettings()); got != tt.want {
				t.Errorf("Apply() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestStakingYield(t *testing.T) {
	got := StakingYield(decimal.NewFromInt(1000))
	if !got.Equal(decimal.NewFromInt(80)) {
		t.Errorf("StakingYield(1000) = %s, want 80", got)
	}
}
