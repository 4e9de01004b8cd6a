package rpc

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"connectrpc.com/connect"
	"go.uber.org/zap"

	"nexus/internal/portfolio"
)

const portfolioService = "/nexus.v1.PortfolioService/"

type PortfolioItem struct {
	portfolio.DisplayItem
	State portfolio.State `json:"state"`
}

type ListItemsRequest struct{}

type ListItemsResponse struct {
	Items               []PortfolioItem          `json:"items"`
	Slot                portfolio.GenerationSlot `json:"slot"`
	AutoGenerateEnabled bool                     `json:"autoGenerateEnabled"`
	ItemGenerateEnabled bool                     `json:"itemGenerateEnabled"`
}

type RequestGenerationRequest struct {
	ID    int    `json:"id"`
	Title string `json:"title,omitempty"`
}

type GenerationResponse struct {
	Accepted bool           `json:"accepted"`
	Item     *PortfolioItem `json:"item,omitempty"`
}

type GenerateNextRequest struct{}

// PortfolioHandler exposes the generation workflow. Generations run in the
// background; clients poll ListItems to see the merged image.
type PortfolioHandler struct {
	ctrl *portfolio.Controller
	log  *zap.Logger
}

func NewPortfolioHandler(ctrl *portfolio.Controller, log *zap.Logger) *PortfolioHandler {
	if log == nil {
		log = zap.NewNop()
	}
	return &PortfolioHandler{ctrl: ctrl, log: log}
}

func (h *PortfolioHandler) Routes() []Route {
	opts := handlerOptions()
	return []Route{
		{portfolioService + "ListItems", connect.NewUnaryHandler(portfolioService+"ListItems", h.ListItems, opts...)},
		{portfolioService + "RequestGeneration", connect.NewUnaryHandler(portfolioService+"RequestGeneration", h.RequestGeneration, opts...)},
		{portfolioService + "GenerateNext", connect.NewUnaryHandler(portfolioService+"GenerateNext", h.GenerateNext, opts...)},
	}
}

func (h *PortfolioHandler) ListItems(_ context.Context, _ *connect.Request[ListItemsRequest]) (*connect.Response[ListItemsResponse], error) {
	items := h.ctrl.Items()
	out := make([]PortfolioItem, 0, len(items))
	for _, it := range items {
		out = append(out, h.view(it))
	}
	return connect.NewResponse(&ListItemsResponse{
		Items:               out,
		Slot:                h.ctrl.Slot(),
		AutoGenerateEnabled: h.ctrl.AutoGenerateEnabled(),
		ItemGenerateEnabled: h.ctrl.ItemGenerateEnabled(),
	}), nil
}

func (h *PortfolioHandler) RequestGeneration(_ context.Context, req *connect.Request[RequestGenerationRequest]) (*connect.Response[GenerationResponse], error) {
	item, ok := h.ctrl.Item(req.Msg.ID)
	if !ok {
		return nil, connect.NewError(connect.CodeNotFound, fmt.Errorf("%w: %d", portfolio.ErrNotFound, req.Msg.ID))
	}
	title := strings.TrimSpace(req.Msg.Title)
	if title == "" {
		title = item.Title
	}
	done, accepted := h.ctrl.RequestGeneration(item.ID, title)
	if accepted {
		go h.observe(done)
	}
	view := h.view(item)
	if accepted {
		view.State = portfolio.StatePending
	}
	return connect.NewResponse(&GenerationResponse{Accepted: accepted, Item: &view}), nil
}

func (h *PortfolioHandler) GenerateNext(_ context.Context, _ *connect.Request[GenerateNextRequest]) (*connect.Response[GenerationResponse], error) {
	item, done, accepted := h.ctrl.GenerateNext()
	if !accepted {
		return connect.NewResponse(&GenerationResponse{}), nil
	}
	go h.observe(done)
	view := h.view(item)
	view.State = portfolio.StatePending
	return connect.NewResponse(&GenerationResponse{Accepted: true, Item: &view}), nil
}

func (h *PortfolioHandler) observe(done <-chan portfolio.Outcome) {
	out := <-done
	if out.Err != nil && !errors.Is(out.Err, context.Canceled) {
		h.log.Warn("portfolio generation ended without image", zap.Int("id", out.ID), zap.Error(out.Err))
	}
}

func (h *PortfolioHandler) view(it portfolio.DisplayItem) PortfolioItem {
	st, err := h.ctrl.StateOf(it.ID)
	if err != nil {
		st = portfolio.StateUnfilled
	}
	return PortfolioItem{DisplayItem: it, State: st}
}
