package mail

type LeadHandoffEmailData struct {
	PromoterName string
	LeadID       string
	Name         string
	Phone        string
	Email        string
	City         string
	State        string
	Street       string
	Number       string
	Complement   string
	District     string
	ZipCode      string
	Notes        string
}

type EmailSender struct {
	Host     string
	Port     int
	User     string
	Password string
	From     string
}
