package notify

import (
	"bytes"
	"fmt"
	"strings"
	"text/template"
	"time"

	"github.com/maruko-pickup/api/internal/jpfmt"
)

// Shop is the footer block printed under every confirmation.
type Shop struct {
	Name    string
	Phone   string
	Address string
	Hours   string
	Closed  string
}

// Subject returns the mail subject for msg.
func Subject(shopName string, msg Message) string {
	return fmt.Sprintf("【%s】ご注文ありがとうございます（注文番号: %s）", shopName, msg.OrderNumber)
}

type bodyData struct {
	Message
	PickupDateLabel string
	Lines           []string
	Shop            Shop
}

var bodyTemplate = template.Must(template.New("confirmation").Parse(`{{.CustomerName}}様

この度はご注文ありがとうございます。
ご注文内容の確認をいたします。

【注文番号】
{{.OrderNumber}}

【受取日時】
{{.PickupDateLabel}}
{{.PickupTime}}

【ご注文内容】
{{range .Lines}}{{.}}
{{end}}{{if .PriceUndetermined}}
※計量後に金額が確定する商品が含まれています。
{{end}}
こちらでご注文お受けしました。
お待ちしております！

---------------------------------
{{.Shop.Name}}
{{- with .Shop.Phone}}
TEL: {{.}}{{end}}
{{- with .Shop.Address}}
住所: {{.}}{{end}}
{{- with .Shop.Hours}}
営業時間: {{.}}{{end}}
{{- with .Shop.Closed}}
定休日: {{.}}{{end}}
---------------------------------
`))

// RenderBody renders the plain-text confirmation body.
func RenderBody(shop Shop, msg Message) (string, error) {
	label := msg.PickupDate
	if d, err := time.ParseInLocation("2006-01-02", msg.PickupDate, jpfmt.JST); err == nil {
		label = jpfmt.Date(d)
	}

	lines := make([]string, len(msg.Items))
	for i, it := range msg.Items {
		lines[i] = itemLine(it)
	}

	var buf bytes.Buffer
	if err := bodyTemplate.Execute(&buf, bodyData{
		Message:         msg,
		PickupDateLabel: label,
		Lines:           lines,
		Shop:            shop,
	}); err != nil {
		return "", fmt.Errorf("render confirmation body: %w", err)
	}
	return buf.String(), nil
}

func itemLine(it MessageItem) string {
	line := it.ProductName + " " + it.Quantity
	var opts []string
	for _, o := range []string{it.Usage, it.Flavor, it.Remarks} {
		if o != "" {
			opts = append(opts, o)
		}
	}
	if len(opts) > 0 {
		line += "　(" + strings.Join(opts, ", ") + ")"
	}
	return line
}
