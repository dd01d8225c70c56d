package grammar

import "testing"

func TestEscapePattern(t *testing.T) {
	tests := []struct {
		caption    string
		literal    string
		maleeni    string
		lexmachine string
	}{
		{
			caption:    "operators",
			literal:    `.*+?|()`,
			maleeni:    `\.\*\+\?\|\(\)`,
			lexmachine: `\.\*\+\?\|\(\)`,
		},
		{
			caption:    "brackets",
			literal:    `a[0]`,
			maleeni:    `a\[0\]`,
			lexmachine: `a\[0\]`,
		},
		{
			caption:    "a backslash",
			literal:    `\n`,
			maleeni:    `\\n`,
			lexmachine: `\\n`,
		},
		{
			caption:    "characters only lexmachine treats as operators",
			literal:    `^x-y{}`,
			maleeni:    `^x-y{}`,
			lexmachine: `\^x-y{}`,
		},
	}
	for _, tt := range tests {
		t.Run(tt.caption, func(t *testing.T) {
			if p := EscapePattern(tt.literal); p != tt.maleeni {
				t.Fatalf("unexpected maleeni pattern; want: %v, got: %v", tt.maleeni, p)
			}
			if p := EscapeLexmachinePattern(tt.literal); p != tt.lexmachine {
				t.Fatalf("unexpected lexmachine pattern; want: %v, got: %v", tt.lexmachine, p)
			}
		})
	}
}
