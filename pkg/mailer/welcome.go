package mailer

import (
	"context"

	"github.com/oksasatya/quiz-auth/internal/domain/entity"
	tpl "github.com/oksasatya/quiz-auth/pkg/mailer/templates"
)

// JobPublisher enqueues email jobs; helpers.RabbitPublisher satisfies it.
type JobPublisher interface {
	PublishJSON(ctx context.Context, body any) error
}

// WelcomeNotifier enqueues a welcome email for every new registration.
type WelcomeNotifier struct {
	Pub         JobPublisher
	CompanyName string
	LoginURL    string
	SupportURL  string
}

func NewWelcomeNotifier(pub JobPublisher, companyName, loginURL, supportURL string) *WelcomeNotifier {
	return &WelcomeNotifier{Pub: pub, CompanyName: companyName, LoginURL: loginURL, SupportURL: supportURL}
}

func (n *WelcomeNotifier) UserRegistered(ctx context.Context, u entity.PublicUser) error {
	data := tpl.WelcomeData{
		Name:        u.Name,
		Email:       u.Email,
		Role:        string(u.Role),
		CompanyName: n.CompanyName,
		LoginURL:    n.LoginURL,
		SupportURL:  n.SupportURL,
	}
	return n.Pub.PublishJSON(ctx, EmailJob{To: u.Email, Template: tpl.Welcome, Data: data.ToMap()})
}
