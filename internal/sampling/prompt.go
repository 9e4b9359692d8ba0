package sampling

import "fmt"

const systemPrompt = "You are a nutritionist AI specialized in Indian cuisine. Analyze food images and provide detailed nutritional information."

func buildPrompt(description string) string {
	return fmt.Sprintf(`Analyze this food image carefully and provide a detailed analysis:

IMPORTANT INSTRUCTIONS:
1. First, determine if this is Indian food or cuisine
2. If it's NOT Indian food, respond with "NOT_INDIAN_FOOD" and stop analysis
3. If it IS Indian food, provide detailed nutritional analysis

For INDIAN FOOD only, analyze:
- Identify specific Indian dishes (dal, rice, roti, sabzi, etc.)
- Estimate realistic portion size in grams based on image
- Provide accurate nutritional values based on the specific Indian foods identified
- Give confidence level of your analysis (1-10)

Additional context: %s

Format your response clearly:
- If NOT Indian food: Just write "NOT_INDIAN_FOOD - This appears to be [food type] which is not Indian cuisine"
- If Indian food: Provide detailed analysis of the specific dishes, realistic portion size, and accurate nutrition facts

Be very accurate with portion sizes and nutrition - don't guess wildly.`, description)
}
