package chat

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/huenthong/spacifychat/internal/catalog"
)

var (
	ErrNotFound        = errors.New("session not found")
	ErrStage           = errors.New("operation not valid at current stage")
	ErrUnknownArea     = errors.New("unknown area")
	ErrUnknownProperty = errors.New("unknown property")
	ErrInvalid         = errors.New("invalid inquiry")
)

// Stage is the position of a chat session in the scripted dialogue.
type Stage string

const (
	StageWelcome        Stage = "welcome"
	StageAreaSelect     Stage = "area_select"
	StagePropertySelect Stage = "property_select"
	StageInquiryForm    Stage = "inquiry_form"
	StageBudgetConfirm  Stage = "budget_confirm"
	StageCompleted      Stage = "completed"
)

type Role string

const (
	RoleVisitor   Role = "visitor"
	RoleAssistant Role = "assistant"
)

type Message struct {
	Role   Role      `json:"role"`
	Text   string    `json:"text"`
	SentAt time.Time `json:"sent_at"`
}

// Inquiry is the completed form a visitor submits after picking a
// property. Budget band and occupants are required; the rest is
// optional and only improves the score.
type Inquiry struct {
	BudgetBand    string     `json:"budget_band"`
	MoveInDate    *time.Time `json:"move_in_date,omitempty"`
	Occupants     int        `json:"occupants"`
	HasVehicle    bool       `json:"has_vehicle,omitempty"`
	NeedsParking  bool       `json:"needs_parking,omitempty"`
	TenancyMonths int        `json:"tenancy_months,omitempty"`
	Gender        string     `json:"gender,omitempty"`
	UnitType      string     `json:"unit_type,omitempty"`
	Workplace     string     `json:"workplace,omitempty"`
	Nationality   string     `json:"nationality,omitempty"`
	Source        string     `json:"source,omitempty"`
}

// Session is the full state of one chat conversation. Transitions are
// value-receiver methods returning the updated session together with
// the assistant replies they produced; there is no hidden state beyond
// what the struct carries.
type Session struct {
	ID         uuid.UUID  `json:"session_id"`
	Stage      Stage      `json:"stage"`
	Area       string     `json:"area,omitempty"`
	Property   string     `json:"property,omitempty"`
	Inquiry    *Inquiry   `json:"inquiry,omitempty"`
	LeadID     *uuid.UUID `json:"lead_id,omitempty"`
	Transcript []Message  `json:"transcript"`
	CreatedAt  time.Time  `json:"created_at"`
	UpdatedAt  time.Time  `json:"updated_at"`
}

const (
	welcomeMessage  = "Hello! Welcome to Spacify Co-Living! I'm here to help you find your perfect co-living space. Say hi to get started."
	welcomeReprompt = "I'm here to help you find your perfect co-living space. Say hi to get started!"
	areaPrompt      = "Which area are you interested in?"
	declineMessage  = "No problem! You can adjust the form and submit it again, or pick a different budget range."
	goodbyeMessage  = "No problem! Let me know if you would like to explore other options or adjust your preferences."

	budgetNotice = "Based on your budget range, the available options might be limited. The average room price in this area is typically higher.\n\n" +
		"Would you like to proceed with options within your budget range? Reply yes to continue or no to adjust."

	handoffMessage = "Perfect! I'm connecting you with our property consultant now.\n\n" +
		"Sarah Lim - Senior Property Consultant\n" +
		"WhatsApp: +60 12-345-6789\n\n" +
		"She will contact you within 30 minutes to arrange a viewing.\n" +
		"Thank you for choosing Spacify Co-Living!"
)

// NewSession opens a conversation at the welcome stage.
func NewSession(id uuid.UUID, now time.Time) (Session, []string) {
	s := Session{ID: id, Stage: StageWelcome, CreatedAt: now, UpdatedAt: now}
	replies := s.reply(now, welcomeMessage)
	return s, replies
}

// Text handles a free-form visitor message. Only the welcome gate and
// the post-completion follow-up react to content; at every other stage
// the assistant repeats what it is waiting for.
func (s Session) Text(input string, now time.Time) (Session, []string, error) {
	s.push(RoleVisitor, input, now)
	switch s.Stage {
	case StageWelcome:
		if isGreeting(input) {
			s.Stage = StageAreaSelect
			return s, s.reply(now, areaPrompt), nil
		}
		return s, s.reply(now, welcomeReprompt), nil
	case StageAreaSelect:
		return s, s.reply(now, "Please pick one of the listed areas to continue."), nil
	case StagePropertySelect:
		return s, s.reply(now, fmt.Sprintf("Please pick one of the properties in %s to continue.", s.Area)), nil
	case StageInquiryForm:
		return s, s.reply(now, "Please fill out the inquiry form to proceed."), nil
	case StageBudgetConfirm:
		return s, s.reply(now, "Please reply yes to continue with your budget or no to adjust it."), nil
	case StageCompleted:
		next, replies := s.completedText(input, now)
		return next, replies, nil
	}
	return s, nil, fmt.Errorf("%w: text at %q", ErrStage, s.Stage)
}

// SelectArea records the visitor's area choice and moves to property
// selection. The area must be on the catalog menu.
func (s Session) SelectArea(area string, now time.Time) (Session, []string, error) {
	if s.Stage != StageAreaSelect {
		return s, nil, fmt.Errorf("%w: select_area at %q", ErrStage, s.Stage)
	}
	canonical, ok := catalog.Lookup(area)
	if !ok {
		return s, nil, fmt.Errorf("%w: %q", ErrUnknownArea, area)
	}
	s.push(RoleVisitor, canonical, now)
	s.Area = canonical
	s.Stage = StagePropertySelect
	msg := fmt.Sprintf("Great choice! Here are the available co-living spaces in %s:", canonical)
	return s, s.reply(now, msg), nil
}

// SelectProperty records the property choice and moves to the inquiry
// form. The property must belong to the selected area.
func (s Session) SelectProperty(property string, now time.Time) (Session, []string, error) {
	if s.Stage != StagePropertySelect {
		return s, nil, fmt.Errorf("%w: select_property at %q", ErrStage, s.Stage)
	}
	canonical, ok := catalog.LookupProperty(s.Area, property)
	if !ok {
		return s, nil, fmt.Errorf("%w: %q in %s", ErrUnknownProperty, property, s.Area)
	}
	s.push(RoleVisitor, canonical, now)
	s.Property = canonical
	s.Stage = StageInquiryForm
	msg := fmt.Sprintf("Perfect! You've selected %s. Please fill out the inquiry form to proceed.", canonical)
	return s, s.reply(now, msg), nil
}

// SubmitInquiry validates and stores the form. A low budget band moves
// the session to budget confirmation without creating a lead; otherwise
// the stage is left as-is and the caller completes the session once the
// lead exists.
func (s Session) SubmitInquiry(inq Inquiry, now time.Time) (Session, []string, error) {
	if s.Stage != StageInquiryForm {
		return s, nil, fmt.Errorf("%w: inquiry at %q", ErrStage, s.Stage)
	}
	if !catalog.ValidBudgetBand(inq.BudgetBand) {
		return s, nil, fmt.Errorf("%w: budget band %q", ErrInvalid, inq.BudgetBand)
	}
	if inq.Occupants < 1 {
		return s, nil, fmt.Errorf("%w: occupants must be at least 1", ErrInvalid)
	}
	s.Inquiry = &inq
	s.UpdatedAt = now

	replies := s.reply(now, s.summaryMessage())
	if catalog.IsLowBudget(inq.BudgetBand) {
		s.Stage = StageBudgetConfirm
		replies = append(replies, s.reply(now, budgetNotice)...)
	}
	return s, replies, nil
}

// ConfirmBudget resolves the low-budget notice. Declining returns the
// session to the inquiry form so the visitor can amend the budget;
// proceeding leaves the stage to the caller, which creates the lead and
// completes the session.
func (s Session) ConfirmBudget(proceed bool, now time.Time) (Session, []string, error) {
	if s.Stage != StageBudgetConfirm {
		return s, nil, fmt.Errorf("%w: confirm_budget at %q", ErrStage, s.Stage)
	}
	if proceed {
		s.push(RoleVisitor, "Yes", now)
		return s, nil, nil
	}
	s.push(RoleVisitor, "No", now)
	s.Stage = StageInquiryForm
	return s, s.reply(now, declineMessage), nil
}

// Complete marks the session completed after its lead was created and
// announces the assignment plus room recommendations.
func (s Session) Complete(leadID uuid.UUID, agentName string, slaMinutes int, now time.Time) (Session, []string) {
	id := leadID
	s.LeadID = &id
	s.Stage = StageCompleted
	notice := fmt.Sprintf("Thank you for your submission! %s will contact you within %d minutes.", agentName, slaMinutes)
	return s, s.reply(now, notice, s.recommendationsMessage())
}

func (s Session) completedText(input string, now time.Time) (Session, []string) {
	in := strings.ToLower(input)
	switch {
	case strings.Contains(in, "yes"):
		return s, s.reply(now, s.recommendationsMessage())
	case strings.Contains(in, "no"):
		return s, s.reply(now, goodbyeMessage)
	default:
		return s, s.reply(now, handoffMessage)
	}
}

func (s *Session) push(role Role, text string, now time.Time) {
	s.Transcript = append(s.Transcript, Message{Role: role, Text: text, SentAt: now})
	s.UpdatedAt = now
}

func (s *Session) reply(now time.Time, texts ...string) []string {
	for _, t := range texts {
		s.push(RoleAssistant, t, now)
	}
	return texts
}

func (s *Session) summaryMessage() string {
	inq := s.Inquiry
	lines := []string{
		"Form summary:",
		fmt.Sprintf("Location: %s - %s", s.Area, s.Property),
		fmt.Sprintf("Budget: %s", inq.BudgetBand),
		fmt.Sprintf("Occupants: %d", inq.Occupants),
		fmt.Sprintf("Car: %s | Parking: %s", yesNo(inq.HasVehicle), yesNo(inq.NeedsParking)),
	}
	if inq.MoveInDate != nil {
		lines = append(lines, fmt.Sprintf("Move-in: %s", inq.MoveInDate.Format("2006-01-02")))
	}
	if inq.TenancyMonths > 0 {
		lines = append(lines, fmt.Sprintf("Tenancy: %d months", inq.TenancyMonths))
	}
	if inq.Gender != "" {
		lines = append(lines, fmt.Sprintf("Gender: %s", inq.Gender))
	}
	if inq.UnitType != "" {
		lines = append(lines, fmt.Sprintf("Unit type: %s", inq.UnitType))
	}
	if inq.Workplace != "" {
		lines = append(lines, fmt.Sprintf("Workplace: %s", inq.Workplace))
	}
	if inq.Nationality != "" {
		lines = append(lines, fmt.Sprintf("Nationality: %s", inq.Nationality))
	}
	lines = append(lines, "", "Thank you for your submission!")
	return strings.Join(lines, "\n")
}

func (s *Session) recommendationsMessage() string {
	band := ""
	if s.Inquiry != nil {
		band = s.Inquiry.BudgetBand
	}
	lines := []string{fmt.Sprintf("Here are our available room recommendations for %s:", s.Property)}
	for _, room := range catalog.Recommend(band) {
		parking := "no parking"
		if room.Parking {
			parking = "parking available"
		}
		lines = append(lines, fmt.Sprintf("Room %s - RM %d/month - %s - %s", room.Code, room.RentRM, room.Description, parking))
	}
	lines = append(lines, "", "Which room interests you? Reply with a room code or say agent to speak with our property consultant.")
	return strings.Join(lines, "\n")
}

func isGreeting(input string) bool {
	in := strings.ToLower(input)
	for _, g := range []string{"hi", "hello", "hey"} {
		if strings.Contains(in, g) {
			return true
		}
	}
	return false
}

func yesNo(b bool) string {
	if b {
		return "Yes"
	}
	return "No"
}
