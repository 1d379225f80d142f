// Package bank holds the built-in SPM mathematics question banks.
// Questions ship with TimeLimitSeconds zero, which the session treats
// as the default countdown budget.
package bank

import "quiz-session-service/internal/domain"

// English is the English-language question sequence.
var English = domain.Bank{
	Language: domain.LanguageEnglish,
	Questions: []domain.Question{
		{
			ID:               1,
			Prompt:           "If 2x + 5 = 13, then the value of x is...",
			Options:          []string{"2", "3", "4", "5"},
			CorrectAnswer:    2,
			Explanation:      "2x + 5 = 13, so 2x = 8, therefore x = 4",
			Difficulty:       domain.DifficultyEasy,
			MotivationalText: "Awesome! You understand linear equations perfectly!",
			StatisticText:    "Only 7 out of 10 students can answer this question correctly!",
		},
		{
			ID:               2,
			Prompt:           "The area of a triangle with base 8 cm and height 6 cm is...",
			Options:          []string{"24 cm²", "48 cm²", "14 cm²", "28 cm²"},
			CorrectAnswer:    0,
			Explanation:      "Area of triangle = ½ × base × height = ½ × 8 × 6 = 24 cm²",
			Difficulty:       domain.DifficultyEasy,
			MotivationalText: "Great! You've mastered the triangle area formula!",
			StatisticText:    "85% of students often get confused with this formula, but not you!",
		},
		{
			ID:               3,
			Prompt:           "If f(x) = 2x² - 3x + 1, then f(2) = ...",
			Options:          []string{"3", "5", "7", "9"},
			CorrectAnswer:    0,
			Explanation:      "f(2) = 2(2)² - 3(2) + 1 = 8 - 6 + 1 = 3",
			Difficulty:       domain.DifficultyMedium,
			MotivationalText: "Excellent! You understand quadratic function substitution!",
			StatisticText:    "This question can only be answered correctly by 4 out of 10 students!",
		},
		{
			ID:               4,
			Prompt:           "The gradient of the line passing through points (2,3) and (5,9) is...",
			Options:          []string{"2", "3", "1/2", "3/2"},
			CorrectAnswer:    0,
			Explanation:      "Gradient = (y₂-y₁)/(x₂-x₁) = (9-3)/(5-2) = 6/3 = 2",
			Difficulty:       domain.DifficultyMedium,
			MotivationalText: "Amazing! You've mastered the gradient concept!",
			StatisticText:    "Wow! Only 3 out of 10 students can calculate gradient accurately!",
		},
		{
			ID:               5,
			Prompt:           "The value of log₂ 32 is...",
			Options:          []string{"4", "5", "6", "8"},
			CorrectAnswer:    1,
			Explanation:      "log₂ 32 = log₂ 2⁵ = 5",
			Difficulty:       domain.DifficultyHard,
			MotivationalText: "Outstanding! Logarithms are tricky but you nailed it!",
			StatisticText:    "Only 2 out of 10 students understand logarithms this well!",
		},
	},
}

// Malay is the Malay-language question sequence.
var Malay = domain.Bank{
	Language: domain.LanguageMalay,
	Questions: []domain.Question{
		{
			ID:               1,
			Prompt:           "Jika 2x + 5 = 13, maka nilai x ialah...",
			Options:          []string{"2", "3", "4", "5"},
			CorrectAnswer:    2,
			Explanation:      "2x + 5 = 13, maka 2x = 8, jadi x = 4",
			Difficulty:       domain.DifficultyEasy,
			MotivationalText: "Wah hebat! Awak faham konsep persamaan linear!",
			StatisticText:    "Hanya 7 daripada 10 pelajar yang boleh jawab soalan ini dengan betul!",
		},
		{
			ID:               2,
			Prompt:           "Luas segi tiga dengan tapak 8 cm dan tinggi 6 cm ialah...",
			Options:          []string{"24 cm²", "48 cm²", "14 cm²", "28 cm²"},
			CorrectAnswer:    0,
			Explanation:      "Luas segi tiga = ½ × tapak × tinggi = ½ × 8 × 6 = 24 cm²",
			Difficulty:       domain.DifficultyEasy,
			MotivationalText: "Bagus! Formula luas segi tiga dah awak kuasai!",
			StatisticText:    "85% pelajar selalu keliru dengan formula ini, tapi awak tak!",
		},
		{
			ID:               3,
			Prompt:           "Jika f(x) = 2x² - 3x + 1, maka f(2) = ...",
			Options:          []string{"3", "5", "7", "9"},
			CorrectAnswer:    0,
			Explanation:      "f(2) = 2(2)² - 3(2) + 1 = 8 - 6 + 1 = 3",
			Difficulty:       domain.DifficultyMedium,
			MotivationalText: "Terbaik! Penggantian fungsi kuadratik dah awak faham!",
			StatisticText:    "Soalan ini hanya boleh dijawab betul oleh 4 daripada 10 pelajar!",
		},
		{
			ID:               4,
			Prompt:           "Kecerunan garis yang melalui titik (2,3) dan (5,9) ialah...",
			Options:          []string{"2", "3", "1/2", "3/2"},
			CorrectAnswer:    0,
			Explanation:      "Kecerunan = (y₂-y₁)/(x₂-x₁) = (9-3)/(5-2) = 6/3 = 2",
			Difficulty:       domain.DifficultyMedium,
			MotivationalText: "Cemerlang! Konsep kecerunan dah awak kuasai!",
			StatisticText:    "Wow! Cuma 3 daripada 10 pelajar yang boleh kira kecerunan dengan tepat!",
		},
		{
			ID:               5,
			Prompt:           "Nilai bagi log₂ 32 ialah...",
			Options:          []string{"4", "5", "6", "8"},
			CorrectAnswer:    1,
			Explanation:      "log₂ 32 = log₂ 2⁵ = 5",
			Difficulty:       domain.DifficultyHard,
			MotivationalText: "Luar biasa! Logaritma memang susah tapi awak boleh!",
			StatisticText:    "Hanya 2 daripada 10 pelajar yang faham logaritma sebaik ini!",
		},
	},
}

// Banks returns all built-in banks keyed by language.
func Banks() map[domain.Language]domain.Bank {
	return map[domain.Language]domain.Bank{
		domain.LanguageEnglish: English,
		domain.LanguageMalay:   Malay,
	}
}
