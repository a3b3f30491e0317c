package gemini

import "google.golang.org/genai"

// promptData represents the data passed to the prompt template
type promptData struct {
	Word     string
	Language string
	Level    string
}

// vocabularyResponse is the JSON document the model is asked to return.
type vocabularyResponse struct {
	Meaning  string            `json:"meaning"`
	Examples []exampleResponse `json:"examples"`
}

type exampleResponse struct {
	Text        string `json:"text"`
	Translation string `json:"translation"`
}

// responseSchema constrains the model output to vocabularyResponse.
var responseSchema = &genai.Schema{
	Type: genai.TypeObject,
	Properties: map[string]*genai.Schema{
		"meaning": {Type: genai.TypeString},
		"examples": {
			Type: genai.TypeArray,
			Items: &genai.Schema{
				Type: genai.TypeObject,
				Properties: map[string]*genai.Schema{
					"text":        {Type: genai.TypeString},
					"translation": {Type: genai.TypeString},
				},
				Required: []string{"text", "translation"},
			},
		},
	},
	Required: []string{"meaning", "examples"},
}

// languageNames maps native-language codes to the names used in prompts.
var languageNames = map[string]string{
	"en": "English",
	"ru": "Russian",
}
