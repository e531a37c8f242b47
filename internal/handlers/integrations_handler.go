package handlers

import (
	"context"
	"fmt"
	"html"
	"net/http"
	"sort"
	"strconv"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"crmmvp/internal/logging"
	"crmmvp/internal/models"
	"crmmvp/internal/repositories"
	"crmmvp/internal/services"
	"crmmvp/internal/utils"
)

const (
	btnMyTasks  = "📋 My tasks"
	linkCodeTTL = 30 * time.Minute
	digestLimit = 10
)

// TelegramBot is the outgoing side of the bot.
type TelegramBot interface {
	SendMessage(chatID int64, text string) error
	SendReplyKeyboard(chatID int64, text string, keyboard [][]string) error
}

type IntegrationsHandler struct {
	TG        TelegramBot
	LinksRepo repositories.TelegramLinkRepository
	UsersRepo repositories.UserRepository
	TaskSvc   services.TaskService
}

func NewIntegrationsHandler(
	tg TelegramBot,
	links repositories.TelegramLinkRepository,
	users repositories.UserRepository,
	taskSvc services.TaskService,
) *IntegrationsHandler {
	return &IntegrationsHandler{TG: tg, LinksRepo: links, UsersRepo: users, TaskSvc: taskSvc}
}

// LinkCodeResponse is returned by POST /integrations/telegram/link.
type LinkCodeResponse struct {
	Code      string    `json:"code"`
	ExpiresAt time.Time `json:"expiresAt"`
	Hint      string    `json:"hint"`
}

// @Summary      Telegram webhook
// @Description  Receives bot updates. Always answers 200 so Telegram does not redeliver.
// @Tags         Integrations
// @Accept       json
// @Success      200
// @Router       /integrations/telegram/webhook [post]
func (h *IntegrationsHandler) Webhook(c *gin.Context) {
	if h.TG == nil {
		logging.Logger.Debug("[tg][webhook] bot disabled")
		c.Status(http.StatusOK)
		return
	}

	var up tgbotapi.Update
	if err := c.ShouldBindJSON(&up); err != nil || up.Message == nil || up.Message.Chat == nil {
		if err != nil {
			logging.Logger.WithError(err).Debug("[tg][webhook] bind failed")
		}
		c.Status(http.StatusOK)
		return
	}

	ctx := c.Request.Context()
	text := strings.TrimSpace(up.Message.Text)
	chatID := up.Message.Chat.ID
	log := logging.Logger.WithField("chat_id", chatID)
	log.WithField("text", text).Debug("[tg][webhook] incoming")

	switch {
	case strings.HasPrefix(text, "/start"):
		_ = h.TG.SendReplyKeyboard(chatID,
			"Hi! To link your account send:\n<code>/link &lt;code&gt;</code>\n\nOnce linked, use the button below:",
			[][]string{{btnMyTasks}},
		)

	case strings.HasPrefix(text, "/link"):
		raw := strings.TrimSpace(strings.TrimPrefix(text, "/link"))
		code, ok := utils.NormalizeLinkCode(raw)
		if !ok {
			log.WithField("raw", raw).Info("[tg][link] malformed code")
			_ = h.TG.SendMessage(chatID, "Invalid code. Send exactly 32 hex characters:\n<code>/link 0123456789ABCDEF0123456789ABCDEF</code>")
			break
		}
		link, err := h.LinksRepo.UseByCode(ctx, code)
		if err != nil {
			log.WithError(err).Info("[tg][link] code rejected")
			_ = h.TG.SendMessage(chatID, "The code is invalid or expired. Request a new one in the app.")
			break
		}
		if err := h.UsersRepo.UpdateTelegramLink(ctx, link.UserID, chatID); err != nil {
			log.WithField("user_id", link.UserID).WithError(err).Error("[tg][link] store chat failed")
			_ = h.TG.SendMessage(chatID, "Could not link the account, try again later.")
			break
		}
		log.WithField("user_id", link.UserID).Info("[tg][link][ok]")
		_ = h.TG.SendMessage(chatID, "Done! Your account is linked. Task notifications will arrive here.")
		h.sendMyTasksDigest(ctx, chatID, link.UserID)

	case text == btnMyTasks:
		u, err := h.UsersRepo.GetByChatID(ctx, chatID)
		if err != nil {
			_ = h.TG.SendMessage(chatID, "This chat is not linked to an account. Use /link first.")
			break
		}
		h.sendMyTasksDigest(ctx, chatID, u.ID)

	default:
		_ = h.TG.SendMessage(chatID, "Unknown command. Use <code>/link &lt;code&gt;</code> or the menu button.")
	}

	c.Status(http.StatusOK)
}

// @Summary      Request a Telegram link code
// @Description  The code is valid for 30 minutes and can be used once.
// @Tags         Integrations
// @Produce      json
// @Success      200  {object}  LinkCodeResponse
// @Failure      401  {object}  ErrorResponse
// @Security     BearerAuth
// @Router       /integrations/telegram/link [post]
func (h *IntegrationsHandler) RequestTelegramLink(c *gin.Context) {
	uid, ok := callerID(c)
	if !ok {
		return
	}
	code, err := utils.NewLinkCode()
	if err != nil {
		respondError(c, "[tg][request-link]", err, "Failed to create link code")
		return
	}
	link, err := h.LinksRepo.Create(c.Request.Context(), uid, code, linkCodeTTL)
	if err != nil {
		respondError(c, "[tg][request-link]", err, "Failed to create link code")
		return
	}
	logging.Logger.WithFields(logrus.Fields{"user_id": uid, "expires_at": link.ExpiresAt}).Info("[tg][request-link][ok]")
	c.JSON(http.StatusOK, LinkCodeResponse{
		Code:      link.Code,
		ExpiresAt: link.ExpiresAt,
		Hint:      "Open the bot chat and send: /link " + link.Code,
	})
}

// dueBucket groups a task date into a digest heading; key orders headings.
// Days are counted between calendar dates in now's location.
func dueBucket(now time.Time, due *time.Time) (name string, key int) {
	if due == nil {
		return "No date", 1_000_000
	}
	days := calendarDays(now, due.In(now.Location()))
	switch {
	case days < 0:
		name = fmt.Sprintf("Overdue (%d d)", -days)
	case days == 0:
		name = "Today"
	case days == 1:
		name = "Tomorrow"
	default:
		name = fmt.Sprintf("In %d days", days)
	}
	return name, days
}

func calendarDays(from, to time.Time) int {
	y1, m1, d1 := from.Date()
	y2, m2, d2 := to.Date()
	a := time.Date(y1, m1, d1, 0, 0, 0, 0, time.UTC)
	b := time.Date(y2, m2, d2, 0, 0, 0, 0, time.UTC)
	return int(b.Sub(a).Hours() / 24)
}

func taskTitle(t models.Task) string {
	if t.Theme != nil && strings.TrimSpace(*t.Theme) != "" {
		return *t.Theme
	}
	if t.Client != nil {
		return string(t.Type) + " · " + t.Client.Name
	}
	return string(t.Type)
}

// digestText renders the open tasks grouped by date, at most digestLimit
// lines.
func digestText(now time.Time, tasks []models.Task) string {
	type group struct {
		name  string
		key   int
		items []models.Task
	}
	byName := map[string]*group{}
	for _, t := range tasks {
		name, key := dueBucket(now, t.Date)
		g := byName[name]
		if g == nil {
			g = &group{name: name, key: key}
			byName[name] = g
		}
		g.items = append(g.items, t)
	}
	groups := make([]*group, 0, len(byName))
	for _, g := range byName {
		groups = append(groups, g)
	}
	sort.Slice(groups, func(i, j int) bool { return groups[i].key < groups[j].key })

	var b strings.Builder
	b.WriteString("📋 <b>My open tasks</b>\n")
	shown := 0
	for _, g := range groups {
		if shown == digestLimit {
			break
		}
		b.WriteString("\n— <b>" + html.EscapeString(g.name) + "</b>\n")
		sort.SliceStable(g.items, func(i, j int) bool {
			di, dj := g.items[i].Date, g.items[j].Date
			if di == nil || dj == nil {
				return di != nil
			}
			return di.Before(*dj)
		})
		for _, t := range g.items {
			if shown == digestLimit {
				break
			}
			b.WriteString("• " + html.EscapeString(taskTitle(t)) + " (" + string(t.Priority) + ")\n")
			shown++
		}
	}
	if rest := len(tasks) - shown; rest > 0 {
		b.WriteString("\n…and " + strconv.Itoa(rest) + " more\n")
	}
	return b.String()
}

func (h *IntegrationsHandler) sendMyTasksDigest(ctx context.Context, chatID int64, userID string) {
	if h.TaskSvc == nil {
		return
	}
	tasks, err := h.TaskSvc.ListVisible(ctx, userID, models.TaskListSettings{Active: true})
	if err != nil {
		logging.Logger.WithField("user_id", userID).WithError(err).Error("[tg][digest] fetch failed")
		_ = h.TG.SendMessage(chatID, "Could not load tasks.")
		return
	}
	if len(tasks) == 0 {
		_ = h.TG.SendReplyKeyboard(chatID, "You have no open tasks. 👍", [][]string{{btnMyTasks}})
		return
	}
	_ = h.TG.SendReplyKeyboard(chatID, digestText(time.Now(), tasks), [][]string{{btnMyTasks}})
}
