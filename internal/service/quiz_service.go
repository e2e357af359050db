package service

import (
	"strconv"
	"strings"
	"time"
)

// Quiz 是每日一题
type Quiz struct {
	Question    string   `json:"question"`
	Choices     []string `json:"choices"`
	AnswerIndex int      `json:"-"`
}

// DefaultQuizBank 基本情報風の自作問題
var DefaultQuizBank = []Quiz{
	{
		Question:    "2進数 (1010)₂ を 10進数で表したものはどれ？",
		Choices:     []string{"8", "9", "10", "12"},
		AnswerIndex: 2,
	},
	{
		Question:    "1バイトは何ビット？",
		Choices:     []string{"4ビット", "8ビット", "16ビット", "32ビット"},
		AnswerIndex: 1,
	},
	{
		Question:    "OSの役割として適切なものはどれ？",
		Choices:     []string{"HWとアプリの仲立ち", "ネット接続だけ", "文字入力だけ", "ソース自動生成"},
		AnswerIndex: 0,
	},
	{
		Question:    "LANの説明として最も適切なものはどれ？",
		Choices:     []string{"世界中のネットワーク", "狭い範囲のネットワーク", "電話網のみ", "無線のみ"},
		AnswerIndex: 1,
	},
	{
		Question:    "情報セキュリティのCIAで C が意味するものはどれ？",
		Choices:     []string{"Confidence", "Control", "Confidentiality", "Connection"},
		AnswerIndex: 2,
	},
}

// QuizService 按日期轮换题目
type QuizService struct {
	bank []Quiz
}

// NewQuizService 构造 QuizService，bank 为空时使用内置题库
func NewQuizService(bank []Quiz) *QuizService {
	if len(bank) == 0 {
		bank = DefaultQuizBank
	}
	return &QuizService{bank: bank}
}

// ForDay 返回某一日的题目，下标为 yyyymmdd 对题库长度取模
func (s *QuizService) ForDay(day time.Time) Quiz {
	key := day.Year()*10000 + int(day.Month())*100 + day.Day()
	return s.bank[key%len(s.bank)]
}

// ParseChoice 解析表单提交的选项下标
func (s *QuizService) ParseChoice(quiz Quiz, raw string) (int, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, invalidInput("choice is required")
	}
	idx, err := strconv.Atoi(raw)
	if err != nil {
		return 0, invalidInput("choice %q is not a number", raw)
	}
	if idx < 0 || idx >= len(quiz.Choices) {
		return 0, invalidInput("choice %d out of range", idx)
	}
	return idx, nil
}

// Check 校验答案，答错返回 ErrWrongAnswer
func (s *QuizService) Check(quiz Quiz, choice int) error {
	if choice < 0 || choice >= len(quiz.Choices) {
		return invalidInput("choice %d out of range", choice)
	}
	if choice != quiz.AnswerIndex {
		return ErrWrongAnswer
	}
	return nil
}
