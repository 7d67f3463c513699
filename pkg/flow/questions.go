package flow

import "github.com/aretw0/promptflow/pkg/domain"

// Question IDs of the default sequence.
const (
	QuestionName                            domain.Question = "Name"
	QuestionOnePlusOne                      domain.Question = "OnePlusOne"
	QuestionTwoPlusFive                     domain.Question = "TwoPlusFive"
	QuestionFivePlusSix                     domain.Question = "FivePlusSix"
	QuestionTenPlusOne                      domain.Question = "TenPlusOne"
	QuestionElevenPlusTwentyTwo             domain.Question = "ElevenPlusTwentyTwo"
	QuestionFifteenPlusEighteen             domain.Question = "FifteenPlusEighteen"
	QuestionTwentyFiveMinusTwentyOne        domain.Question = "TwentyFiveMinusTwentyOne"
	QuestionFiftyMinusEleven                domain.Question = "FiftyMinusEleven"
	QuestionFiftyFourMinusFortyNine         domain.Question = "FiftyFourMinusFortyNine"
	QuestionHundredAndFourMinusFifteen      domain.Question = "HundredAndFourMinusFifteen"
	QuestionTwentyPlusSixtyTwoPlusTwentyTwo domain.Question = "TwentyPlusSixtyTwoPlusTwentyTwo"
	QuestionTenPlusTenPlusTen               domain.Question = "TenPlusTenPlusTen"
)
