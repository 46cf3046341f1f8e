package service

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"gopkg.in/gomail.v2"

	"lending-service/configs"
	"lending-service/internal/models"
	"lending-service/internal/repository"
)

// EmailSvc is the SMTP implementation of the service.Notifier interface
type EmailSvc struct {
	repos  *repository.Repository
	logger *logrus.Logger
	config *configs.Config
}

// NewEmailService creates a new EmailSvc
func NewEmailService(deps Dependencies) *EmailSvc {
	return &EmailSvc{
		repos:  deps.Repos,
		logger: deps.Logger,
		config: deps.Config,
	}
}

const detailRow = `
		<tr>
			<td style="padding: 8px; border: 1px solid #ddd;"><strong>%s:</strong></td>
			<td style="padding: 8px; border: 1px solid #ddd;">%s</td>
		</tr>`

// detailsTable renders label/value pairs as the HTML table used by every notification
func detailsTable(rows ...[2]string) string {
	out := `<table style="border-collapse: collapse; width: 100%;">`
	for _, r := range rows {
		out += fmt.Sprintf(detailRow, r[0], r[1])
	}
	return out + "\n\t</table>"
}

func letter(name, intro, table, outro string) string {
	return fmt.Sprintf(`
	<p>Dear %s,</p>

	<p>%s</p>

	%s

	<p>%s</p>

	<p>
	Best regards,<br>
	Lending Service Team
	</p>
	`, name, intro, table, outro)
}

// recipient returns the borrower of the loan, or nil when there is no email to send to
func (s *EmailSvc) recipient(ctx context.Context, loan *models.Loan) (*models.Borrower, error) {
	borrower := loan.Borrower
	if borrower == nil {
		var err error
		borrower, err = s.repos.Borrower.GetByID(ctx, loan.BorrowerID)
		if err != nil {
			return nil, fmt.Errorf("failed to get borrower: %w", err)
		}
	}

	// Skip if email is empty
	if borrower.Email == "" {
		return nil, nil
	}
	return borrower, nil
}

// LoanApproved tells the borrower the application was approved
func (s *EmailSvc) LoanApproved(ctx context.Context, loan *models.Loan) error {
	borrower, err := s.recipient(ctx, loan)
	if err != nil || borrower == nil {
		return err
	}

	subject := fmt.Sprintf("Loan Approved: %s", loan.LoanNumber)
	body := "<h2>Loan Approval Notification</h2>" + letter(borrower.FullName,
		"We are pleased to inform you that your loan application has been approved.",
		detailsTable(
			[2]string{"Loan Number", loan.LoanNumber},
			[2]string{"Amount", loan.Amount.StringFixed(2)},
			[2]string{"Monthly Interest Rate", percentString(loan.InterestRate)},
			[2]string{"Term", fmt.Sprintf("%d months", loan.TermMonths)},
			[2]string{"Monthly Interest", loan.MonthlyInterest().StringFixed(2)},
		),
		"Our team will contact you to sign the loan documents before disbursement.",
	)

	return s.send(borrower.Email, subject, body, loan)
}

// LoanActivated tells the borrower the loan was disbursed and when the first installment is due
func (s *EmailSvc) LoanActivated(ctx context.Context, loan *models.Loan) error {
	borrower, err := s.recipient(ctx, loan)
	if err != nil || borrower == nil {
		return err
	}

	firstDue := "See your payment schedule for details"
	if len(loan.Schedule) > 0 {
		firstDue = loan.Schedule[0].DueDate.Format("2006-01-02")
	}
	maturity := ""
	if loan.MaturityDate != nil {
		maturity = loan.MaturityDate.Format("2006-01-02")
	}

	subject := fmt.Sprintf("Loan Disbursed: %s", loan.LoanNumber)
	body := "<h2>Loan Disbursement Notification</h2>" + letter(borrower.FullName,
		"Your loan has been disbursed. Interest is due monthly and the principal is due on the maturity date.",
		detailsTable(
			[2]string{"Loan Number", loan.LoanNumber},
			[2]string{"Amount", loan.Amount.StringFixed(2)},
			[2]string{"Monthly Interest", loan.MonthlyInterest().StringFixed(2)},
			[2]string{"First Payment Date", firstDue},
			[2]string{"Maturity Date", maturity},
			[2]string{"Total Repayment", loan.TotalRepayment().StringFixed(2)},
		),
		"Thank you for choosing our lending services.",
	)

	return s.send(borrower.Email, subject, body, loan)
}

// PaymentReminder reminds the borrower of an upcoming installment
func (s *EmailSvc) PaymentReminder(ctx context.Context, loan *models.Loan, item *models.PaymentScheduleItem) error {
	borrower, err := s.recipient(ctx, loan)
	if err != nil || borrower == nil {
		return err
	}

	subject := fmt.Sprintf("Upcoming Payment Reminder: %s", loan.LoanNumber)
	body := "<h2>Payment Reminder</h2>" + letter(borrower.FullName,
		fmt.Sprintf("Installment %d of your loan is due on %s.", item.PaymentNumber, item.DueDate.Format("2006-01-02")),
		detailsTable(
			[2]string{"Loan Number", loan.LoanNumber},
			[2]string{"Due Date", item.DueDate.Format("2006-01-02")},
			[2]string{"Interest", item.InterestDue.StringFixed(2)},
			[2]string{"Principal", item.PrincipalDue.StringFixed(2)},
			[2]string{"Total Amount Due", item.TotalDue().StringFixed(2)},
		),
		"Paying on time avoids late fees.",
	)

	return s.send(borrower.Email, subject, body, loan)
}

// OverdueNotice tells the borrower the loan is past due
func (s *EmailSvc) OverdueNotice(ctx context.Context, loan *models.Loan, daysPastDue int) error {
	borrower, err := s.recipient(ctx, loan)
	if err != nil || borrower == nil {
		return err
	}

	amount := "-"
	if oldest := loan.OldestUnpaidItem(); oldest != nil {
		amount = oldest.TotalDue().StringFixed(2)
	}

	subject := fmt.Sprintf("OVERDUE Payment: %s", loan.LoanNumber)
	body := "<h2>Overdue Payment Notice</h2>" + letter(borrower.FullName,
		fmt.Sprintf(`<span style="color: red; font-weight: bold;">Your loan is overdue by %d days.</span>`, daysPastDue),
		detailsTable(
			[2]string{"Loan Number", loan.LoanNumber},
			[2]string{"Days Past Due", fmt.Sprintf("%d", daysPastDue)},
			[2]string{"Oldest Installment Due", amount},
		),
		"Please contact us to arrange payment.",
	)

	return s.send(borrower.Email, subject, body, loan)
}

// LoanDefaulted tells the borrower the loan is in default
func (s *EmailSvc) LoanDefaulted(ctx context.Context, loan *models.Loan) error {
	borrower, err := s.recipient(ctx, loan)
	if err != nil || borrower == nil {
		return err
	}

	subject := fmt.Sprintf("Loan in Default: %s", loan.LoanNumber)
	body := "<h2>Default Notice</h2>" + letter(borrower.FullName,
		"Your loan has been declared in default because payments are overdue.",
		detailsTable(
			[2]string{"Loan Number", loan.LoanNumber},
			[2]string{"Amount", loan.Amount.StringFixed(2)},
		),
		"If the debt is not settled the loan will be referred to our legal department.",
	)

	return s.send(borrower.Email, subject, body, loan)
}

func percentString(rate decimal.Decimal) string {
	return rate.Mul(decimal.NewFromInt(100)).StringFixed(2) + "%"
}

func (s *EmailSvc) send(to, subject, body string, loan *models.Loan) error {
	if err := s.sendEmail(to, subject, body); err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}

	s.logger.Infof("Email %q sent to %s for loan %s", subject, to, loan.LoanNumber)
	return nil
}

// sendEmail sends an email using the SMTP server
func (s *EmailSvc) sendEmail(to, subject, body string) error {
	m := gomail.NewMessage()
	m.SetHeader("From", s.config.Email.SenderEmail)
	m.SetHeader("To", to)
	m.SetHeader("Subject", subject)
	m.SetBody("text/html", body)

	d := gomail.NewDialer(
		s.config.Email.SMTPHost,
		s.config.Email.SMTPPort,
		s.config.Email.SMTPUser,
		s.config.Email.SMTPPassword,
	)

	if err := d.DialAndSend(m); err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}

	return nil
}
