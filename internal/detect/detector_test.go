package detect

import "testing"

func TestLanguage(t *testing.T) {
	cases := []struct {
		name string
		text string
		want string
	}{
		{"cjk", "你好世界", "zh"},
		{"hiragana", "こんにちは", "ja"},
		{"katakana", "カタカナ", "ja"},
		{"hangul", "안녕하세요", "ko"},
		{"cyrillic", "Привет", "ru"},
		{"arabic", "مرحبا", "ar"},
		{"latin", "Hello", "en"},
		{"latin with accents", "Olá mundo", "en"},
		{"empty", "", "en"},
		{"symbols", "123 !?-+ 456", "en"},
		{"emoji", "🙂🙂", "en"},
		{"kanji before kana", "日本語のテキスト", "zh"},
		{"cyrillic wins over latin", "hello привет", "ru"},
		{"hangul mixed with digits", "2024년", "ko"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := Language(tc.text); got != tc.want {
				t.Fatalf("Language(%q) = %q, want %q", tc.text, got, tc.want)
			}
		})
	}
}

func TestHeuristicDetect(t *testing.T) {
	if got := (Heuristic{}).Detect("Bonjour"); got != "en" {
		t.Fatalf("Detect = %q", got)
	}
}
