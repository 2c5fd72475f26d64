package service

import (
	"context"
	"fmt"
	"strings"
	"time"
	"unicode"

	"github.com/sefazor/fanvault-backend/internal/metrics"
	"github.com/sefazor/fanvault-backend/internal/models"
	"go.uber.org/zap"
)

const (
	weightKeywords = 0.5
	weightIntent   = 0.25
	weightStage    = 0.15
	weightLanguage = 0.1

	// SuggestThreshold is the confidence a script needs to be offered as-is.
	SuggestThreshold = 0.5

	memoryContextSize = 10
	aiTimeout         = 10 * time.Second
)

var intentKeywords = map[models.Intent][]string{
	models.IntentPurchase:  {"buy", "unlock", "purchase", "send it", "show me", "i want", "get it", "pay"},
	models.IntentGreeting:  {"hi", "hey", "hello", "good morning", "good evening", "whats up", "sup"},
	models.IntentObjection: {"too expensive", "not sure", "maybe later", "can't afford", "cant afford", "no thanks", "not now"},
	models.IntentPrice:     {"how much", "price", "cost", "credits", "discount", "cheaper"},
	models.IntentFarewell:  {"bye", "goodbye", "good night", "gotta go", "see you", "later"},
}

// intent checks run in this order; the first table with a hit wins.
var intentOrder = []models.Intent{
	models.IntentObjection,
	models.IntentPrice,
	models.IntentPurchase,
	models.IntentFarewell,
	models.IntentGreeting,
}

var cannedReplies = map[models.Intent]string{
	models.IntentPurchase:  "I think you're going to love this one 😘 unlock it and tell me what you think!",
	models.IntentGreeting:  "Hey you! I was just thinking about you 💕 how's your day going?",
	models.IntentObjection: "No pressure babe, it'll be here whenever you're ready 😊",
	models.IntentPrice:     "It's a special price just for you today 😉 want me to send it over?",
	models.IntentFarewell:  "Talk soon! Don't be a stranger 💋",
	models.IntentNone:      "Tell me more 😊",
}

const suggestionSystemPrompt = `You write short chat replies for a content creator talking to a fan.
Stay warm, playful and in character as the creator. Never mention that you are an assistant.
Keep replies under 40 words. Use the notes about the fan when relevant.`

type ScriptService struct {
	scripts  ScriptStore
	creators CreatorStore
	messages MessageStore
	ai       ReplyGenerator
	log      *zap.Logger
}

func NewScriptService(scripts ScriptStore, creators CreatorStore, messages MessageStore, ai ReplyGenerator, log *zap.Logger) *ScriptService {
	return &ScriptService{scripts: scripts, creators: creators, messages: messages, ai: ai, log: log}
}

// tokenize lowercases text and keeps only letter and digit runs, joined by
// single spaces and padded so phrases can be matched on word boundaries.
func tokenize(text string) string {
	fields := strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != '\''
	})
	for i, f := range fields {
		fields[i] = strings.ReplaceAll(f, "'", "")
	}
	return " " + strings.Join(fields, " ") + " "
}

func containsPhrase(tokens, phrase string) bool {
	p := strings.TrimSpace(tokenize(phrase))
	if p == "" {
		return false
	}
	return strings.Contains(tokens, " "+p+" ")
}

// DetectIntent classifies a fan message with the keyword tables.
func DetectIntent(message string) models.Intent {
	tokens := tokenize(message)
	for _, intent := range intentOrder {
		for _, kw := range intentKeywords[intent] {
			if containsPhrase(tokens, kw) {
				return intent
			}
		}
	}
	return models.IntentNone
}

// ScoreScript returns the script's confidence for the conversation, or -1
// when the fan cannot afford it.
func ScoreScript(script *models.Script, conv models.ConversationContext, tokens string, intent models.Intent) float64 {
	if script.MinCredits > conv.Credits {
		return -1
	}

	score := 0.0
	if len(script.Keywords) > 0 {
		hits := 0
		for _, kw := range script.Keywords {
			if containsPhrase(tokens, kw) {
				hits++
			}
		}
		score += weightKeywords * float64(hits) / float64(len(script.Keywords))
	}

	if script.Intent != models.IntentNone && script.Intent == intent {
		score += weightIntent
	}

	switch {
	case script.FanStage == models.StageAny || script.FanStage == "":
		score += weightStage / 2
	case script.FanStage == conv.FanStage:
		score += weightStage
	}

	lang := conv.Language
	if lang == "" {
		lang = "en"
	}
	if strings.EqualFold(script.Language, lang) {
		score += weightLanguage
	}
	return score
}

// BestMatch picks the highest scoring script. Scripts are expected in id
// order so that ties keep the lower id.
func BestMatch(scripts []models.Script, conv models.ConversationContext) *models.ScriptMatch {
	tokens := tokenize(conv.Message)
	intent := DetectIntent(conv.Message)

	var best *models.ScriptMatch
	for i := range scripts {
		score := ScoreScript(&scripts[i], conv, tokens, intent)
		if score <= 0 {
			continue
		}
		if best == nil || score > best.Confidence || (score == best.Confidence && scripts[i].ID < best.Script.ID) {
			best = &models.ScriptMatch{Script: scripts[i], Confidence: score, Intent: intent}
		}
	}
	return best
}

func (s *ScriptService) Match(ctx context.Context, agencyID uint, conv models.ConversationContext) (*models.ScriptMatch, error) {
	scripts, err := s.scripts.ActiveByAgency(ctx, agencyID)
	if err != nil {
		return nil, fmt.Errorf("load scripts: %w", err)
	}
	return BestMatch(scripts, conv), nil
}

// Suggest offers a stored script when one is confident enough, then the
// LLM, then a canned reply for the detected intent.
func (s *ScriptService) Suggest(ctx context.Context, userID uint, req models.SuggestRequest) (*models.Suggestion, error) {
	chatter, err := s.creators.GetChatterByUserID(ctx, userID)
	if err != nil {
		return nil, notFound(err)
	}

	match, err := s.Match(ctx, chatter.AgencyID, req.Context)
	if err != nil {
		return nil, err
	}
	if match != nil && match.Confidence >= SuggestThreshold {
		metrics.RecordSuggestion(string(models.SuggestionScript))
		id := match.Script.ID
		return &models.Suggestion{
			Reply:      match.Script.Body,
			Source:     models.SuggestionScript,
			Confidence: match.Confidence,
			ScriptID:   &id,
			Intent:     match.Intent,
		}, nil
	}

	intent := DetectIntent(req.Context.Message)
	if s.ai != nil {
		reply, err := s.generate(ctx, chatter.ID, req)
		if err == nil {
			metrics.RecordSuggestion(string(models.SuggestionAI))
			return &models.Suggestion{Reply: reply, Source: models.SuggestionAI, Intent: intent}, nil
		}
		s.log.Warn("ai suggestion failed", zap.Uint("chatter_id", chatter.ID), zap.Error(err))
	}

	metrics.RecordSuggestion(string(models.SuggestionFallback))
	return &models.Suggestion{Reply: cannedReplies[intent], Source: models.SuggestionFallback, Intent: intent}, nil
}

func (s *ScriptService) generate(ctx context.Context, chatterID uint, req models.SuggestRequest) (string, error) {
	memories, err := s.messages.Memories(ctx, chatterID, req.FanID, memoryContextSize)
	if err != nil {
		return "", fmt.Errorf("load memories: %w", err)
	}
	notes := make([]string, 0, len(memories))
	for _, m := range memories {
		notes = append(notes, fmt.Sprintf("[%s] %s", m.Kind, m.Note))
	}

	actx, cancel := context.WithTimeout(ctx, aiTimeout)
	defer cancel()

	reply, err := s.ai.GenerateReply(actx, suggestionSystemPrompt, notes, req.Context.Message)
	if err != nil {
		return "", err
	}
	reply = strings.TrimSpace(reply)
	if reply == "" {
		return "", fmt.Errorf("empty reply")
	}
	return reply, nil
}

func (s *ScriptService) CreateScript(ctx context.Context, userID uint, req models.CreateScriptRequest) (*models.Script, error) {
	agency, err := s.creators.GetAgencyByOwner(ctx, userID)
	if err != nil {
		return nil, notFound(err)
	}

	keywords := make([]string, 0, len(req.Keywords))
	for _, kw := range req.Keywords {
		if kw = strings.TrimSpace(strings.ToLower(kw)); kw != "" {
			keywords = append(keywords, kw)
		}
	}
	stage := req.FanStage
	if stage == "" {
		stage = models.StageAny
	}
	lang := req.Language
	if lang == "" {
		lang = "en"
	}

	script := &models.Script{
		AgencyID:   agency.ID,
		Title:      req.Title,
		Body:       req.Body,
		Keywords:   keywords,
		Intent:     req.Intent,
		FanStage:   stage,
		MinCredits: req.MinCredits,
		Language:   lang,
		IsActive:   true,
	}
	if err := s.scripts.Create(ctx, script); err != nil {
		return nil, err
	}
	return script, nil
}

func (s *ScriptService) AgencyScripts(ctx context.Context, userID uint) ([]models.Script, error) {
	agency, err := s.creators.GetAgencyByOwner(ctx, userID)
	if err != nil {
		return nil, notFound(err)
	}
	return s.scripts.ActiveByAgency(ctx, agency.ID)
}

func (s *ScriptService) DeactivateScript(ctx context.Context, actor models.Actor, id uint) error {
	script, err := s.scripts.GetByID(ctx, id)
	if err != nil {
		return notFound(err)
	}
	agency, err := s.creators.GetAgency(ctx, script.AgencyID)
	if err != nil {
		return notFound(err)
	}
	if !Authorize(actor, ActionManageAgency, Resource{AgencyOwnerID: agency.OwnerID}) {
		return ErrForbidden
	}
	return s.scripts.Deactivate(ctx, id)
}
