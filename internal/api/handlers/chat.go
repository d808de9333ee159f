package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/rs/zerolog/log"

	"github.com/pawmart/pawmart/internal/assistant"
	"github.com/pawmart/pawmart/internal/auth"
	"github.com/pawmart/pawmart/internal/llm"
	"github.com/pawmart/pawmart/pkg/models"
)

// ChatCompletions is the assistant endpoint. One inbound turn flows
// through: auth context + conversation window → intent classification →
// (optionally) tool dispatch → response composition, with at most one
// tool call and at most two upstream model calls per turn.
func (h *Handlers) ChatCompletions(w http.ResponseWriter, r *http.Request) {
	var req models.ChatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "请求体不合法")
		return
	}
	if req.Model == "" || req.Messages == nil {
		respondError(w, http.StatusBadRequest, "缺少必需参数: model 或 messages")
		return
	}

	ctx := r.Context()
	ac := auth.FromContext(ctx)
	window := assistant.Window(req.Messages)
	text := assistant.LatestUserText(req.Messages)

	decision := h.Classifier.Classify(ctx, text, ac.UserID, window)

	log.Info().
		Bool("use_tool", decision.ShouldUseTool).
		Str("tool", string(decision.Tool)).
		Str("via", string(decision.Via)).
		Float64("confidence", decision.Confidence).
		Bool("authenticated", ac.Authenticated()).
		Msg("intent decided")

	// No tool: plain conversation, single upstream pass.
	if !decision.ShouldUseTool {
		content, err := h.Upstream.Complete(ctx, req.Model, window)
		if err != nil {
			h.respondUpstreamError(w, err)
			return
		}
		resp := assistant.Envelope(req.Model, content)
		if req.Debug {
			resp.Intent = &decision
		}
		respondJSON(w, http.StatusOK, resp)
		return
	}

	result, err := h.Dispatcher.Dispatch(ctx, decision, ac)
	if err != nil {
		log.Error().Err(err).Str("tool", string(decision.Tool)).Msg("tool execution failed")
		h.respondInternal(w, err)
		return
	}

	content, err := h.Composer.Reply(ctx, req.Model, window, result)
	if err != nil {
		h.respondUpstreamError(w, err)
		return
	}

	resp := assistant.Envelope(req.Model, content)
	if req.Debug {
		resp.Intent = &decision
		resp.ToolResult = result
	}
	respondJSON(w, http.StatusOK, resp)
}

// respondUpstreamError maps an upstream model failure onto the outbound
// status: a non-success HTTP response passes its status through when it is
// a usable error code, everything else (transport faults, missing key)
// becomes a generic server-side failure.
func (h *Handlers) respondUpstreamError(w http.ResponseWriter, err error) {
	if errors.Is(err, llm.ErrNotConfigured) {
		respondError(w, http.StatusInternalServerError, "服务端未配置 DASHSCOPE_API_KEY")
		return
	}

	var ue *llm.UpstreamError
	if errors.As(err, &ue) {
		status := ue.StatusCode
		if status < 400 || status > 599 {
			status = http.StatusBadGateway
		}
		log.Warn().Int("upstream_status", ue.StatusCode).Str("message", ue.Message).Msg("upstream returned non-success")
		respondError(w, status, "模型调用失败")
		return
	}

	log.Error().Err(err).Msg("upstream call failed")
	message := "模型调用失败"
	if h.Development {
		message += ": " + err.Error()
	}
	respondError(w, http.StatusBadGateway, message)
}

func (h *Handlers) respondInternal(w http.ResponseWriter, err error) {
	message := "服务器内部错误"
	if h.Development {
		message += ": " + err.Error()
	}
	respondError(w, http.StatusInternalServerError, message)
}
