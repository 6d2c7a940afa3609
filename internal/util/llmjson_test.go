package util

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

type sampleReply struct {
	Answer string `json:"answer"`
	Score  int    `json:"score"`
}

func TestExtractJSON(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantOK  bool
		wantAns string
		wantNum int
	}{
		{
			name:    "纯JSON直接解析",
			input:   `{"answer":"三天年假","score":90}`,
			wantOK:  true,
			wantAns: "三天年假",
			wantNum: 90,
		},
		{
			name:    "前后带说明文字",
			input:   "好的，以下是结果：\n{\"answer\":\"按制度执行\",\"score\":80}\n希望对你有帮助。",
			wantOK:  true,
			wantAns: "按制度执行",
			wantNum: 80,
		},
		{
			name:    "markdown代码栅栏包裹",
			input:   "```json\n{\"answer\":\"请联系HR\",\"score\":70}\n```",
			wantOK:  true,
			wantAns: "请联系HR",
			wantNum: 70,
		},
		{
			name:    "无语言标注的代码栅栏",
			input:   "```\n{\"answer\":\"ok\",\"score\":1}\n```",
			wantOK:  true,
			wantAns: "ok",
			wantNum: 1,
		},
		{
			name:    "字符串值里含大括号",
			input:   `结果如下 {"answer":"模板为 {name}，请替换","score":60} 请查收`,
			wantOK:  true,
			wantAns: "模板为 {name}，请替换",
			wantNum: 60,
		},
		{
			name:    "字符串值里含转义引号",
			input:   `{"answer":"他说\"可以\"","score":50}`,
			wantOK:  true,
			wantAns: `他说"可以"`,
			wantNum: 50,
		},
		{
			name:   "纯文本无JSON",
			input:  "抱歉，我无法回答这个问题。",
			wantOK: false,
		},
		{
			name:   "大括号不配平",
			input:  `{"answer":"截断了`,
			wantOK: false,
		},
		{
			name:   "空输入",
			input:  "",
			wantOK: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got sampleReply
			ok := ExtractJSON(tt.input, &got)
			assert.Equal(t, tt.wantOK, ok)
			if tt.wantOK {
				assert.Equal(t, tt.wantAns, got.Answer)
				assert.Equal(t, tt.wantNum, got.Score)
			}
		})
	}
}

func TestExtractJSONNestedObject(t *testing.T) {
	var got struct {
		Response struct {
			Content string `json:"content"`
		} `json:"response"`
	}

	input := "评估完成。```json\n{\"response\":{\"content\":\"年假为5天\"}}\n```"
	assert.True(t, ExtractJSON(input, &got))
	assert.Equal(t, "年假为5天", got.Response.Content)
}
