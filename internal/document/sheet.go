package document

import (
	"bytes"
	"fmt"
	"html/template"
	"strings"

	"github.com/maruko-pickup/api/internal/jpfmt"
)

// Page geometry of the printed sheet. Renderers read these when printing.
const (
	PaperWidthInches  = 8.27  // A4
	PaperHeightInches = 11.69 // A4
	MarginInches      = 0.39  // 1cm
)

var sheetFuncs = template.FuncMap{
	"yen": jpfmt.Yen,
	"join": func(parts []string) string {
		return strings.Join(parts, "　")
	},
}

var sheetTemplate = template.Must(template.New("sheet").Funcs(sheetFuncs).Parse(`<!DOCTYPE html>
<html lang="ja">
<head>
<meta charset="utf-8">
<title>注文書 {{.OrderNumber}}</title>
<style>
  @page { size: A4; margin: 0; }
  * { box-sizing: border-box; }
  body {
    margin: 0;
    font-family: "Noto Sans JP", "Hiragino Kaku Gothic ProN", "Yu Gothic", sans-serif;
    font-size: 12pt;
    color: #111;
  }
  h1 { font-size: 22pt; text-align: center; letter-spacing: 0.5em; margin: 0 0 16pt; }
  .meta { display: flex; justify-content: space-between; font-size: 10pt; color: #444; }
  .customer { font-size: 18pt; border-bottom: 1px solid #111; padding-bottom: 4pt; margin: 16pt 0 8pt; }
  .pickup { font-size: 14pt; margin: 12pt 0; }
  .pickup span { font-weight: bold; }
  h2 { font-size: 13pt; border-left: 4pt solid #111; padding-left: 6pt; margin: 18pt 0 8pt; }
  table { width: 100%; border-collapse: collapse; }
  th, td { border: 1px solid #999; padding: 5pt 6pt; vertical-align: top; }
  th { background: #eee; font-size: 10pt; }
  td.num { text-align: right; white-space: nowrap; }
  .remarks { font-size: 10pt; color: #444; }
  .total { margin-top: 10pt; text-align: right; font-size: 14pt; }
  .note { font-size: 10pt; color: #a00; }
</style>
</head>
<body>
<h1>注文書</h1>
<div class="meta">
  <div>注文番号: {{.OrderNumber}}</div>
  <div>{{.StatusLabel}}</div>
</div>
<div class="customer">{{.CustomerName}}　様</div>
<div>TEL: {{.CustomerPhone}}</div>
<div class="pickup">受取日時: <span>{{.PickupDateLabel}} {{.PickupTime}}</span></div>

<h2>ご注文内容</h2>
<table>
  <thead>
    <tr><th>商品</th><th>数量</th><th>用途・味付け</th><th>小計</th></tr>
  </thead>
  <tbody>
  {{- range .Items}}
    <tr>
      <td>{{.ProductName}}{{with .Remarks}}<div class="remarks">備考: {{.}}</div>{{end}}</td>
      <td>{{.Quantity}}</td>
      <td>{{join .Options}}</td>
      <td class="num">{{if .PriceUndetermined}}計量後確定{{else}}{{yen .Subtotal}}{{end}}</td>
    </tr>
  {{- end}}
  </tbody>
</table>
<div class="total">合計: {{yen .TotalAmount}}{{if .PriceUndetermined}}<div class="note">※計量後に金額が確定する商品を含みます</div>{{end}}</div>
</body>
</html>
`))

// HTML renders the order sheet for o.
func HTML(o Order) (string, error) {
	var buf bytes.Buffer
	if err := sheetTemplate.Execute(&buf, o); err != nil {
		return "", fmt.Errorf("execute sheet template: %w", err)
	}
	return buf.String(), nil
}

// Lines returns the plain-text item lines printed under ご注文内容:
// name, quantity, usage and flavor separated by full-width spaces.
func Lines(o Order) []string {
	out := make([]string, len(o.Items))
	for i, it := range o.Items {
		parts := append([]string{it.ProductName, it.Quantity}, it.Options()...)
		out[i] = strings.Join(parts, "　")
	}
	return out
}
