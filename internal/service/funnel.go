// Package service — funnel.go implementa a máquina de estados da conversa.
//
// ============================================================
// ARQUITETURA — Strategy Pattern para as etapas do funil
// ============================================================
//
// O Funnel é o orquestrador central das rotas de sessão. Texto livre
// do visitante entra por HandleText, que despacha para a strategy da
// etapa atual:
//
//  1. Handler recebe POST /v1/sessions/{id}/messages com {"text": "..."}
//  2. Funnel.HandleText() registra a mensagem do visitante no transcript
//  3. Procura a strategy da etapa (coleta de nome? de gênero?)
//  4. Se nenhuma aceita, delega pro FreeChatResponder (IA externa)
//  5. As respostas do bot saem SEMPRE pela fila de entrega — nunca
//     direto no response HTTP
//
// Strategies disponíveis:
//   - nameStrategy:   extrai o nome ou repete a pergunta
//   - genderStrategy: classifica o gênero ou repete a pergunta
//   - (demais etapas) FreeChatResponder via IA
//
// Invariante central: só os handlers de transição deste arquivo mudam
// Stage/Profile/Selection, sempre com o lock da sessão.
package service

import (
	"context"
	"strings"
	"time"

	"github.com/cineflixpay/ashley-assistant-go/internal/domain"
	"github.com/cineflixpay/ashley-assistant-go/internal/infra/observability"
	"github.com/cineflixpay/ashley-assistant-go/internal/infra/session"
	"github.com/cineflixpay/ashley-assistant-go/internal/port"
	"github.com/cineflixpay/ashley-assistant-go/internal/queue"
	"github.com/cineflixpay/ashley-assistant-go/internal/text"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

var tracer = otel.Tracer("service")

// stageStrategy é o contrato de uma etapa scriptada do funil.
type stageStrategy interface {
	// CanHandle diz se a strategy trata a etapa atual.
	CanHandle(stage domain.Stage) bool

	// Handle processa o texto do visitante dentro da etapa. Nunca
	// retorna erro por texto "inválido": input que não casa vira
	// re-pergunta, segurando a etapa.
	Handle(ctx context.Context, sess *session.Session, input string) error
}

// Funnel conduz o visitante pelas etapas de venda.
type Funnel struct {
	store     *session.Store
	publisher port.EventPublisher
	narrator  port.Narrator
	catalog   *domain.Catalog
	ai        *FreeChatResponder
	router    *checkoutRouter
	pacing    queue.Config
	sleep     queue.SleepFunc
	metrics   *observability.Metrics
	logger    *zap.Logger

	// strategies em ordem: a primeira que aceita a etapa ganha.
	strategies []stageStrategy
}

// NewFunnel creates the funnel service. sleep=nil usa o relógio real.
func NewFunnel(
	store *session.Store,
	publisher port.EventPublisher,
	narrator port.Narrator,
	catalog *domain.Catalog,
	ai *FreeChatResponder,
	pacing queue.Config,
	sleep queue.SleepFunc,
	metrics *observability.Metrics,
	logger *zap.Logger,
) *Funnel {
	f := &Funnel{
		store:     store,
		publisher: publisher,
		narrator:  narrator,
		catalog:   catalog,
		ai:        ai,
		router:    &checkoutRouter{catalog: catalog},
		pacing:    pacing,
		sleep:     sleep,
		metrics:   metrics,
		logger:    logger,
	}
	f.strategies = []stageStrategy{
		&nameStrategy{funnel: f},
		&genderStrategy{funnel: f},
	}
	return f
}

// Catalog expõe o catálogo estático (rota GET /v1/plans).
func (f *Funnel) Catalog() *domain.Catalog {
	return f.catalog
}

// ============================================================
// Ciclo de vida da sessão
// ============================================================

// StartSession creates a session and enqueues the greeting sequence.
// planID opcional: quando o visitante chega pelo CTA de um plano, a
// saudação menciona o plano e encurta a abertura.
func (f *Funnel) StartSession(ctx context.Context, planID string) (*session.Session, error) {
	_, span := tracer.Start(ctx, "Funnel.StartSession")
	defer span.End()

	var planName string
	if planID != "" {
		plan := f.catalog.PlanByID(planID)
		if plan == nil {
			return nil, &domain.ErrValidation{Field: "plan_id", Message: "unknown plan " + planID}
		}
		planName = plan.Name
	}

	sess := session.New(uuid.NewString())
	sess.Queue = queue.NewDelivery(
		sess.Context(),
		sess.ID,
		f.publisher,
		f.narrator,
		f.pacing,
		f.sleep,
		func(m domain.ChatMessage) {
			sess.Append(m)
			f.metrics.IncrMessageDelivered(string(domain.SenderBot))
		},
		f.logger,
	)
	f.store.Put(sess)

	f.metrics.IncrSessionStarted()
	f.metrics.IncrStageTransition(string(domain.StageGreeting))
	span.SetAttributes(attribute.String("session.id", sess.ID))

	if planName != "" {
		sess.Queue.Enqueue(
			queue.Item{Text: msgPlanInterest(planName)},
			queue.Item{Text: msgAskNameShort},
		)
	} else {
		sess.Queue.Enqueue(
			queue.Item{Text: msgGreetingHello},
			queue.Item{Text: msgGreetingPurpose},
			queue.Item{Text: msgAskName},
		)
	}

	// A saudação termina pedindo o nome; a etapa já espera por ele.
	f.setStage(sess, domain.StageCollectingName)

	f.logger.Info("session started",
		zap.String("session_id", sess.ID),
		zap.String("plan_interest", planID),
	)
	return sess, nil
}

// Abandon processa o sinal de abandono (fechar o chat, exit intent).
// Só é honrado uma vez, na escolha de plano sem plano escolhido; nos
// demais casos é ignorado sem erro.
func (f *Funnel) Abandon(ctx context.Context, id string) error {
	_, span := tracer.Start(ctx, "Funnel.Abandon")
	defer span.End()

	sess, err := f.get(id)
	if err != nil {
		return err
	}

	sess.Lock()
	eligible := sess.Stage == domain.StageChoosingPlan &&
		sess.Selection.PlanID == "" && !sess.CheckedOut
	if !eligible {
		sess.Unlock()
		return nil
	}
	sess.Stage = domain.StageWinBack
	name := sess.Profile.Name
	sess.Unlock()

	f.metrics.IncrStageTransition(string(domain.StageWinBack))
	sess.Queue.Enqueue(
		queue.Item{Text: msgWinBackHold(name)},
		queue.Item{Text: msgWinBackCoupon(f.catalog.WinBackCoupon)},
	)
	return nil
}

// Transcript devolve o histórico da sessão (fallback de polling).
func (f *Funnel) Transcript(ctx context.Context, id string) ([]domain.ChatMessage, error) {
	sess, err := f.get(id)
	if err != nil {
		return nil, err
	}
	return sess.Messages(), nil
}

// ============================================================
// Entrada de texto — despacho por strategy
// ============================================================

// HandleText processa uma mensagem de texto do visitante.
func (f *Funnel) HandleText(ctx context.Context, id, input string) error {
	ctx, span := tracer.Start(ctx, "Funnel.HandleText")
	defer span.End()

	input = strings.TrimSpace(input)
	if input == "" {
		return &domain.ErrValidation{Field: "text", Message: "empty message"}
	}

	sess, err := f.get(id)
	if err != nil {
		return err
	}

	// A IA recebe o histórico ANTES deste turno: o colaborador de
	// completion anexa o userMessage por conta própria, então mandar o
	// turno atual também no histórico o duplicaria no prompt.
	history := sess.History()
	f.appendUser(sess, input)

	sess.Lock()
	stage := sess.Stage
	sess.Unlock()
	span.SetAttributes(attribute.String("chat.stage", string(stage)))

	for _, strategy := range f.strategies {
		if strategy.CanHandle(stage) {
			return strategy.Handle(ctx, sess, input)
		}
	}

	// Nenhuma etapa scriptada: conversa livre com a IA.
	return f.ai.Respond(ctx, sess, input, history)
}

// ============================================================
// Transições por botão (gênero, plano, adicionais, checkout)
// ============================================================

// SelectGender é o caminho dos botões "Sou homem"/"Sou mulher".
func (f *Funnel) SelectGender(ctx context.Context, id, gender string) error {
	ctx, span := tracer.Start(ctx, "Funnel.SelectGender")
	defer span.End()

	var g domain.Gender
	var userMsg string
	switch gender {
	case string(domain.GenderMale):
		g, userMsg = domain.GenderMale, msgUserMale
	case string(domain.GenderFemale):
		g, userMsg = domain.GenderFemale, msgUserFemale
	default:
		return &domain.ErrValidation{Field: "gender", Message: "must be male or female"}
	}

	sess, err := f.get(id)
	if err != nil {
		return err
	}

	f.appendUser(sess, userMsg)
	f.applyGender(sess, g)
	return nil
}

// SelectPlan armazena a escolha do plano e abre a oferta de adicionais.
func (f *Funnel) SelectPlan(ctx context.Context, id, planID string) error {
	_, span := tracer.Start(ctx, "Funnel.SelectPlan")
	defer span.End()

	plan := f.catalog.PlanByID(planID)
	if plan == nil {
		return &domain.ErrValidation{Field: "plan_id", Message: "unknown plan " + planID}
	}

	sess, err := f.get(id)
	if err != nil {
		return err
	}

	sess.Lock()
	if sess.CheckedOut {
		sess.Unlock()
		return &domain.ErrConflict{Message: "checkout already completed"}
	}
	sess.Selection.PlanID = plan.ID
	name := sess.Profile.Name
	sess.Stage = domain.StageChoosingUpsells
	sess.Unlock()

	f.appendUser(sess, msgUserWantsPlan(plan.Name))
	f.metrics.IncrStageTransition(string(domain.StageChoosingUpsells))
	sess.Queue.Enqueue(
		queue.Item{Text: msgPlanChosen(name, plan.Name)},
		queue.Item{Text: msgUpsellPitch},
	)
	return nil
}

// ToggleUpsell liga/desliga um adicional e devolve o total recalculado.
func (f *Funnel) ToggleUpsell(ctx context.Context, id, upsellID string) (float64, error) {
	_, span := tracer.Start(ctx, "Funnel.ToggleUpsell")
	defer span.End()

	upsell := f.catalog.UpsellByID(upsellID)
	if upsell == nil {
		return 0, &domain.ErrValidation{Field: "upsell_id", Message: "unknown upsell " + upsellID}
	}

	sess, err := f.get(id)
	if err != nil {
		return 0, err
	}

	sess.Lock()
	defer sess.Unlock()
	if sess.CheckedOut {
		return 0, &domain.ErrConflict{Message: "checkout already completed"}
	}
	sess.Selection.UpsellIDs[upsell.ID] = !sess.Selection.UpsellIDs[upsell.ID]

	// Total sempre recalculado do catálogo, nunca acumulado.
	return f.catalog.Total(&sess.Selection), nil
}

// Confirm fecha a compra: roteia para pagamento ou WhatsApp, UMA vez.
func (f *Funnel) Confirm(ctx context.Context, id string) (*domain.CheckoutResult, error) {
	_, span := tracer.Start(ctx, "Funnel.Confirm")
	defer span.End()

	sess, err := f.get(id)
	if err != nil {
		return nil, err
	}

	sess.Lock()
	if sess.CheckedOut {
		sess.Unlock()
		return nil, &domain.ErrConflict{Message: "checkout already completed"}
	}
	if sess.Selection.PlanID == "" {
		sess.Unlock()
		return nil, &domain.ErrValidation{Field: "plan_id", Message: "no plan selected"}
	}

	res, err := f.router.route(&sess.Selection)
	if err != nil {
		sess.Unlock()
		f.logger.Error("checkout routing failed",
			zap.String("session_id", sess.ID),
			zap.Error(err),
		)
		return nil, err
	}

	sess.CheckedOut = true
	sess.Stage = domain.StageCheckout
	sess.Unlock()

	f.metrics.IncrCheckout(string(res.route))
	f.metrics.IncrStageTransition(string(domain.StageCheckout))
	span.SetAttributes(attribute.String("checkout.route", string(res.route)))

	sess.Queue.Enqueue(
		queue.Item{Text: res.message},
		queue.Item{RedirectURL: res.url},
	)

	f.logger.Info("checkout confirmed",
		zap.String("session_id", sess.ID),
		zap.String("route", string(res.route)),
		zap.Float64("total", res.total),
	)

	return &domain.CheckoutResult{
		Route:        res.route,
		RedirectURL:  res.url,
		DelaySeconds: int(f.pacing.RedirectDelay / time.Second),
		Total:        res.total,
	}, nil
}

// ============================================================
// Strategies das etapas scriptadas
// ============================================================

// nameStrategy coleta o nome do visitante.
type nameStrategy struct {
	funnel *Funnel
}

func (s *nameStrategy) CanHandle(stage domain.Stage) bool {
	// greeting coberto também: mensagem que chega antes da saudação
	// terminar já é tratada como resposta de nome.
	return stage == domain.StageGreeting || stage == domain.StageCollectingName
}

func (s *nameStrategy) Handle(ctx context.Context, sess *session.Session, input string) error {
	name, ok := text.ExtractName(input)
	if !ok {
		sess.Queue.Enqueue(queue.Item{Text: msgAskName})
		return nil
	}

	sess.Lock()
	sess.Profile.Name = name
	sess.Stage = domain.StageCollectingGender
	sess.Unlock()

	s.funnel.metrics.IncrStageTransition(string(domain.StageCollectingGender))
	sess.Queue.Enqueue(
		queue.Item{Text: msgNicePleasure(name)},
		queue.Item{Text: msgAskGender},
	)
	return nil
}

// genderStrategy coleta o sinal de gênero por texto.
type genderStrategy struct {
	funnel *Funnel
}

func (s *genderStrategy) CanHandle(stage domain.Stage) bool {
	return stage == domain.StageCollectingGender
}

func (s *genderStrategy) Handle(ctx context.Context, sess *session.Session, input string) error {
	g := text.ClassifyGender(input)
	if g == domain.GenderUnknown {
		sess.Queue.Enqueue(queue.Item{Text: msgAskGenderRetry})
		return nil
	}
	s.funnel.applyGender(sess, g)
	return nil
}

// ============================================================
// Internos
// ============================================================

func (f *Funnel) get(id string) (*session.Session, error) {
	sess, ok := f.store.Get(id)
	if !ok {
		return nil, &domain.ErrNotFound{Resource: "session", ID: id}
	}
	return sess, nil
}

func (f *Funnel) setStage(sess *session.Session, stage domain.Stage) {
	sess.Lock()
	sess.Stage = stage
	sess.Unlock()
	f.metrics.IncrStageTransition(string(stage))
}

func (f *Funnel) appendUser(sess *session.Session, content string) {
	sess.Append(domain.ChatMessage{
		ID:        uuid.NewString(),
		Text:      content,
		Sender:    domain.SenderUser,
		CreatedAt: time.Now(),
	})
	f.metrics.IncrMessageDelivered(string(domain.SenderUser))
}

// applyGender grava o gênero (uma única vez) e dispara a sequência de
// recomendações + pitch narrado + CTA de planos.
func (f *Funnel) applyGender(sess *session.Session, g domain.Gender) {
	sess.Lock()
	if sess.Profile.Gender != domain.GenderUnknown {
		// Já coletado: campo preenche uma vez e nunca reseta.
		sess.Unlock()
		return
	}
	sess.Profile.Gender = g
	name := sess.Profile.Name
	sess.Stage = domain.StageRecommendations
	sess.Unlock()

	f.metrics.IncrStageTransition(string(domain.StageRecommendations))
	sess.Queue.Enqueue(
		queue.Item{Text: msgRecsIntro(name, g)},
		queue.Item{Text: msgRecsList(g)},
		queue.Item{Text: msgPitchText(name), Speech: msgPitchSpeech(name, g)},
		queue.Item{Text: msgPlansCTA},
	)

	// O CTA convida a escolher; o estado já aceita a escolha.
	f.setStage(sess, domain.StageChoosingPlan)
}
