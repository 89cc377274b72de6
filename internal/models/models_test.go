package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestTemplate_Validate(t *testing.T) {
	tests := []struct {
		name    string
		tmpl    Template
		wantErr bool
	}{
		{"valid", Template{Text: "[人物]宣布[動作]", Category: "政治"}, false},
		{"no placeholders", Template{Text: "今日無事", Category: "社會"}, false},
		{"missing text", Template{Category: "政治"}, true},
		{"missing category", Template{Text: "[人物]宣布"}, true},
		{"empty placeholder", Template{Text: "[]宣布[動作]", Category: "政治"}, true},
		{"blank placeholder", Template{Text: "[ ]宣布", Category: "政治"}, true},
		{"nested placeholder", Template{Text: "[[人物]]宣布", Category: "政治"}, true},
		{"unclosed bracket", Template{Text: "[人物宣布", Category: "政治"}, true},
		{"stray closing bracket", Template{Text: "人物]宣布", Category: "政治"}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.tmpl.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestKeywordRule(t *testing.T) {
	assert.NoError(t, KeywordRule.Validate("辭職"))
	assert.Error(t, KeywordRule.Validate("[動作]"))
	assert.Error(t, KeywordRule.Validate("半個]"))
}

func TestHeadlineFilter_IsEmpty(t *testing.T) {
	assert.True(t, HeadlineFilter{}.IsEmpty())

	now := time.Now()
	assert.False(t, HeadlineFilter{Category: "科技"}.IsEmpty())
	assert.False(t, HeadlineFilter{From: &now}.IsEmpty())
}

func TestDefaultPage(t *testing.T) {
	p := DefaultPage()
	assert.Equal(t, 100, p.Limit)
	assert.Equal(t, SortByCreatedAt, p.SortBy)
	assert.True(t, p.Descending)
}
