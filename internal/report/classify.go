package report

import (
	"strings"
	"unicode"

	"github.com/Angelicac-Wang/n8n-AI-Agent/internal/nodeschema"
)

// Node origins.
const (
	ClassOfficial  = "Official"
	ClassLangChain = "LangChain"
	ClassCommunity = "Community"
)

// LangChain subcategories, in the order they are tested.
const (
	LCChatModels   = "Chat Models"
	LCLLMModels    = "LLM Models"
	LCEmbeddings   = "Embeddings"
	LCVectorStores = "Vector Stores"
	LCMemory       = "Memory"
	LCTools        = "Tools"
	LCChains       = "Chains"
	LCAgents       = "Agents"
	LCOther        = "Other"
)

// LangChainCategories lists the subcategories in display order.
var LangChainCategories = []string{
	LCLLMModels, LCChatModels, LCEmbeddings, LCVectorStores,
	LCMemory, LCTools, LCChains, LCAgents, LCOther,
}

// aiSubstrings mark a node as AI related wherever they appear. "ai" is
// too short for that and must be a word of its own.
var aiSubstrings = []string{
	"openai", "anthropic", "gemini", "gpt", "llm", "langchain",
	"embeddings", "sentiment", "classifier", "chatbot", "assistant",
}

// Classify reports where a node comes from, judged by its name and file.
func Classify(file string, rec *nodeschema.Record) string {
	name := strings.ToLower(rec.Name)
	switch {
	case strings.Contains(name, "langchain") || strings.Contains(strings.ToLower(file), "langchain"):
		return ClassLangChain
	case strings.HasPrefix(rec.Name, nodeschema.PrefixBase):
		return ClassOfficial
	default:
		return ClassCommunity
	}
}

// IsAIRelated reports whether the name, display name or description
// mentions an AI keyword.
func IsAIRelated(rec *nodeschema.Record) bool {
	text := strings.ToLower(rec.Name + " " + rec.DisplayName + " " + rec.Description)
	for _, kw := range aiSubstrings {
		if strings.Contains(text, kw) {
			return true
		}
	}
	for _, word := range strings.FieldsFunc(text, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	}) {
		if word == "ai" {
			return true
		}
	}
	return false
}

// IsTool reports whether the node is a tool by display name or file.
func IsTool(file string, rec *nodeschema.Record) bool {
	return strings.Contains(strings.ToLower(rec.DisplayName), "tool") ||
		strings.Contains(strings.ToLower(file), "tool")
}

// IsTrigger reports whether the node is a trigger by display name or file.
func IsTrigger(file string, rec *nodeschema.Record) bool {
	return strings.Contains(strings.ToLower(rec.DisplayName), "trigger") ||
		strings.Contains(strings.ToLower(file), "trigger")
}

// LangChainCategory sorts a LangChain node by its display name.
func LangChainCategory(displayName string) string {
	n := strings.ToLower(displayName)
	switch {
	case strings.Contains(n, "chat model"):
		return LCChatModels
	case strings.Contains(n, "model") && !strings.Contains(n, "chat"):
		return LCLLMModels
	case strings.Contains(n, "embedding"):
		return LCEmbeddings
	case strings.Contains(n, "vector"):
		return LCVectorStores
	case strings.Contains(n, "memory"):
		return LCMemory
	case strings.Contains(n, "tool"):
		return LCTools
	case strings.Contains(n, "chain"):
		return LCChains
	case strings.Contains(n, "agent"):
		return LCAgents
	default:
		return LCOther
	}
}
