package handler

import (
	"fmt"

	"github.com/asakatsu/internal/locale"
	"github.com/gin-gonic/gin"
)

const (
	msgLoginTitle         = "login_title"
	msgLoginOK            = "login_ok"
	msgWrongAnswer        = "wrong_answer"
	msgRetry              = "retry"
	msgRecorded           = "recorded"
	msgNameRequired       = "name_required"
	msgChoiceRequired     = "choice_required"
	msgInvalidInput       = "invalid_input"
	msgStorageUnavailable = "storage_unavailable"
	msgOperationFailed    = "operation_failed"
	msgTitleNotFound      = "title_not_found"
	msgDaysInvalid        = "days_invalid"
	msgTodayTitle         = "today_title"
	msgHistoryTitle       = "history_title"
	msgTitlesTitle        = "titles_title"
	msgUserTitlesTitle    = "user_titles_title"
	msgNewTitles          = "new_titles"
	msgStreak             = "streak"
)

// messages 保存日语与英语文案，键为 msg* 常量
var messages = map[string]struct{ ja, en string }{
	msgLoginTitle:         {ja: "朝活ログイン", en: "Morning Login"},
	msgLoginOK:            {ja: "✅ ログイン成功！", en: "✅ Logged in!"},
	msgWrongAnswer:        {ja: "❌ 不正解！", en: "❌ Wrong answer!"},
	msgRetry:              {ja: "もう一度考えてみよう！", en: "Think it over and try again!"},
	msgRecorded:           {ja: "%s さんの起床時間（%s）を記録しました。", en: "Recorded wake-up time for %s (%s)."},
	msgNameRequired:       {ja: "名前を入力してください。", en: "Please enter your name."},
	msgChoiceRequired:     {ja: "クイズの選択肢を選んでください。", en: "Please choose an answer."},
	msgInvalidInput:       {ja: "入力が不正です。", en: "Invalid input."},
	msgStorageUnavailable: {ja: "記録に失敗しました。しばらくしてから再度お試しください。", en: "Storage is unavailable. Please try again later."},
	msgOperationFailed:    {ja: "処理に失敗しました。", en: "Operation failed."},
	msgTitleNotFound:      {ja: "称号が見つかりません。", en: "Title not found."},
	msgDaysInvalid:        {ja: "days は 1〜31 の範囲で指定してください。", en: "days must be between 1 and 31."},
	msgTodayTitle:         {ja: "今日の起床時間", en: "Today's wake-ups"},
	msgHistoryTitle:       {ja: "起床履歴", en: "Wake-up history"},
	msgTitlesTitle:        {ja: "称号一覧", en: "Titles"},
	msgUserTitlesTitle:    {ja: "%s さんの称号", en: "Titles of %s"},
	msgNewTitles:          {ja: "新しい称号を獲得しました", en: "New titles earned"},
	msgStreak:             {ja: "%d日連続ログイン中", en: "%d-day streak"},
}

func translate(language, key string, args ...any) string {
	entry, ok := messages[key]
	if !ok {
		return key
	}
	text := locale.Pick(language, entry.en, entry.ja)
	if len(args) > 0 {
		return fmt.Sprintf(text, args...)
	}
	return text
}

func (a *API) text(c *gin.Context, key string, args ...any) string {
	return translate(a.requestLocale(c).Language, key, args...)
}
