package service

import "context"

const (
	// streakWindow 限制连续天数查询的回溯范围
	streakWindow = 366
	// regularityToleranceMinutes 是相邻两天起床时刻允许的最大差值
	regularityToleranceMinutes = 30
	patternDays                = 3
	earlyRiserDays             = 3
	noonHour                   = 12
	// noSleepLatestSecond 对应 04:00:00，含边界
	noSleepLatestSecond = 4 * 60 * 60
)

// Candidate 表示规则认定应授予的称号，接收者不一定是当前登录用户
type Candidate struct {
	User string
	Code string
}

// CheckFunc 只读取记录并给出候选，不写入任何数据
type CheckFunc func(ctx context.Context, events EventReader, user, today string) ([]Candidate, error)

// Rule 是一条独立的称号判定规则
type Rule struct {
	Name  string
	Check CheckFunc
}

// StreakTier 是连续登录称号的一个档位
type StreakTier struct {
	Days int
	Code string
}

// DefaultStreakTiers 连续 3/7/14 天
var DefaultStreakTiers = []StreakTier{
	{Days: 3, Code: TitleStreak3},
	{Days: 7, Code: TitleStreak7},
	{Days: 14, Code: TitleStreak14},
}

// DefaultRules 返回内置规则，按固定顺序执行
func DefaultRules() []Rule {
	return []Rule{
		StreakRule(DefaultStreakTiers),
		RegularityRule(TitleRegular3, regularityToleranceMinutes),
		PatternRule("night_owl", TitleNoon3, isAfternoon),
		PatternRule("insomniac", TitleNoSleep3, isBeforeFour),
		EarlyRiserRule(TitleEarlyKing3, earlyRiserDays),
	}
}

// StreakRule 授予所有门槛不超过当前连续天数的档位
func StreakRule(tiers []StreakTier) Rule {
	return Rule{
		Name: "streak",
		Check: func(ctx context.Context, events EventReader, user, today string) ([]Candidate, error) {
			days, err := events.LoginDays(ctx, user, today, streakWindow)
			if err != nil {
				return nil, err
			}
			streak := CurrentStreak(days)

			var out []Candidate
			for _, tier := range tiers {
				if streak >= tier.Days {
					out = append(out, Candidate{User: user, Code: tier.Code})
				}
			}
			return out, nil
		},
	}
}

// RegularityRule 要求最近三天连续，且相邻两天最早起床时刻相差不超过 tolerance 分钟。
// 只比较时与分，不处理跨午夜。
func RegularityRule(code string, tolerance int) Rule {
	return Rule{
		Name: "regularity",
		Check: func(ctx context.Context, events EventReader, user, today string) ([]Candidate, error) {
			rows, err := events.FirstWakeupPerDay(ctx, user, today, patternDays)
			if err != nil {
				return nil, err
			}
			if !consecutiveWakeups(rows, patternDays) {
				return nil, nil
			}

			for i := 1; i < len(rows); i++ {
				later, err := minuteOfDay(rows[i-1].TimeOfDay)
				if err != nil {
					return nil, nil
				}
				earlier, err := minuteOfDay(rows[i].TimeOfDay)
				if err != nil {
					return nil, nil
				}
				if abs(later-earlier) > tolerance {
					return nil, nil
				}
			}
			return []Candidate{{User: user, Code: code}}, nil
		},
	}
}

// PatternRule 要求最近三天连续，且每天最早起床时刻都满足 match
func PatternRule(name, code string, match func(timeOfDay string) bool) Rule {
	return Rule{
		Name: name,
		Check: func(ctx context.Context, events EventReader, user, today string) ([]Candidate, error) {
			rows, err := events.FirstWakeupPerDay(ctx, user, today, patternDays)
			if err != nil {
				return nil, err
			}
			if !consecutiveWakeups(rows, patternDays) {
				return nil, nil
			}
			for _, row := range rows {
				if !match(row.TimeOfDay) {
					return nil, nil
				}
			}
			return []Candidate{{User: user, Code: code}}, nil
		},
	}
}

// EarlyRiserRule 在今天起连续 days 天的最早起床者都是同一人时，把称号授予那个人
func EarlyRiserRule(code string, days int) Rule {
	return Rule{
		Name: "early_riser",
		Check: func(ctx context.Context, events EventReader, _ string, today string) ([]Candidate, error) {
			var champion string
			for i := 0; i < days; i++ {
				day, err := ShiftDay(today, -i)
				if err != nil {
					return nil, err
				}
				riser, ok, err := events.DailyFastestRiser(ctx, day)
				if err != nil {
					return nil, err
				}
				if !ok {
					return nil, nil
				}
				if i == 0 {
					champion = riser.Name
					continue
				}
				if riser.Name != champion {
					return nil, nil
				}
			}
			if champion == "" {
				return nil, nil
			}
			return []Candidate{{User: champion, Code: code}}, nil
		},
	}
}

func consecutiveWakeups(rows []DailyWakeup, want int) bool {
	if len(rows) < want {
		return false
	}
	days := make([]string, 0, len(rows))
	for _, row := range rows[:want] {
		days = append(days, row.Day)
	}
	return consecutiveDays(days)
}

func isAfternoon(timeOfDay string) bool {
	hour, _, _, err := parseTimeOfDay(timeOfDay)
	return err == nil && hour >= noonHour
}

func isBeforeFour(timeOfDay string) bool {
	hour, minute, second, err := parseTimeOfDay(timeOfDay)
	if err != nil {
		return false
	}
	return hour*3600+minute*60+second <= noSleepLatestSecond
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
