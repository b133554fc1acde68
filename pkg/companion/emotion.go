package companion

import "strings"

// Emotion tags a guide reply for avatar display. Detection is a
// keyword heuristic over the reply text; DefaultEmotion is the neutral
// fallback.
type Emotion string

const (
	EmotionDefault  Emotion = "default"
	EmotionHappy    Emotion = "happy"
	EmotionThinking Emotion = "thinking"
	EmotionExcited  Emotion = "excited"
	EmotionSad      Emotion = "sad"
)

var emotionKeywords = []struct {
	emotion  Emotion
	keywords []string
}{
	{EmotionExcited, []string{"sugoi", "yatta", "waaah", "let's go", "exciting", "amazing"}},
	{EmotionHappy, []string{"ne~", "😊", "🌸", "great", "wonderful"}},
	{EmotionThinking, []string{"hmm", "let me", "think", "consider", "🤔"}},
	{EmotionSad, []string{"gomen", "sorry", "unfortunately", "trouble"}},
}

// DetectEmotion classifies a reply by the first keyword group that
// matches. Order matters: excited beats happy beats thinking beats sad.
func DetectEmotion(text string) Emotion {
	lower := strings.ToLower(text)
	for _, group := range emotionKeywords {
		for _, kw := range group.keywords {
			if strings.Contains(lower, kw) {
				return group.emotion
			}
		}
	}
	return EmotionDefault
}
