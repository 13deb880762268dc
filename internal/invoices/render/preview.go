package render

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"html/template"
	"net/http"
)

// Links are the URLs the preview page points at.
type Links struct {
	PDF      string
	Download string
	Switch   string
}

type previewData struct {
	*Document
	Links   Links
	LogoURI template.URL
}

var previewTemplate = template.Must(template.New("preview").Funcs(template.FuncMap{
	"inc": func(i int) int { return i + 1 },
}).Parse(`<!DOCTYPE html>
<html lang="{{.Lang}}">
<head>
<meta charset="utf-8">
<title>{{.Title}} {{.InvoiceNumber}}</title>
<style>
body{font-family:Helvetica,Arial,sans-serif;background:#eee;margin:0}
.bar{display:flex;gap:.5rem;padding:.75rem 1rem;background:#222}
.bar a,.bar button{color:#fff;background:#444;border:0;padding:.4rem .8rem;text-decoration:none;font-size:.9rem;cursor:pointer}
.page{width:180mm;margin:1rem auto;padding:15mm;background:#fff;font-size:10pt}
header{display:flex;justify-content:space-between;border-bottom:1px solid #aaa;padding-bottom:.5rem}
header img{max-width:40mm;max-height:20mm;margin-right:.5rem}
.contact{text-align:right;font-size:9pt}
h1{font-size:18pt;margin:1rem 0 .25rem}
.meta{text-align:right;font-size:9pt}
table{width:100%;border-collapse:collapse;margin:1rem 0}
th{background:#ebebeb;text-align:left}
th,td{border-bottom:1px solid #ccc;padding:.3rem}
td.n,th.n{text-align:right}
tr.total td{font-weight:bold;border-top:1px solid #888}
.fallback{color:#888;font-style:italic}
.notice{border:2px solid #c81e1e;padding:.5rem;max-width:140mm}
.notice strong{color:#c81e1e}
.tax{font-style:italic;color:#5a5a5a;font-size:8pt}
footer{display:flex;border-top:1px solid #aaa;margin-top:2rem;font-size:7.5pt}
footer div{flex:1}
embed{display:block;width:210mm;height:297mm;margin:1rem auto}
</style>
</head>
<body>
<div class="bar">
<a href="{{.Links.Switch}}">{{.T "switch_lang"}}</a>
<button type="button" onclick="printInvoice()">{{.T "print"}}</button>
<a href="{{.Links.Download}}">{{.T "download"}}</a>
</div>
<div class="page">
<header>
<div style="display:flex">
{{if .LogoURI}}<img src="{{.LogoURI}}" alt="">{{end}}
<div><strong>{{.CompanyName}}</strong>{{range .Identity}}<br>{{.}}{{end}}</div>
</div>
<div class="contact">{{range .Contact}}{{.}}<br>{{end}}</div>
</header>
<h1>{{.Title}}</h1>
<div class="meta">{{.T "invoice_no"}}: {{.InvoiceNumber}}<br>{{.T "date"}}: {{.Date}}</div>
{{range .Flights}}<div><strong>{{.Label}}:</strong> {{.Value}}{{if .Fallback}} <span class="fallback">({{$.T "unverified"}})</span>{{end}}</div>
{{end}}
<table>
<tr><th class="n">#</th>{{if .Group}}<th>{{.T "customer"}}</th><th>{{.T "reference"}}</th>{{else}}<th>{{.T "passenger"}}</th><th>{{.T "ticket_no"}}</th>{{end}}<th class="n">{{.T "ticket"}}</th><th class="n">{{.T "visa"}}</th>{{if .Group}}<th class="n">{{.T "hotel"}}</th>{{end}}<th class="n">{{.T "sum"}}</th></tr>
{{range $i, $r := .Rows}}<tr><td class="n">{{inc $i}}</td><td>{{$r.Label}}</td><td>{{$r.Detail}}</td><td class="n">{{$.Money $r.Ticket}}</td><td class="n">{{$.Money $r.Visa}}</td>{{if $.Group}}<td class="n">{{$.Money $r.Hotel}}</td>{{end}}<td class="n">{{$.Money $r.Sum}}</td></tr>
{{end}}
<tr class="total"><td></td><td>{{.Total.Label}}</td><td></td><td class="n">{{.Money .Total.Ticket}}</td><td class="n">{{.Money .Total.Visa}}</td>{{if .Group}}<td class="n">{{.Money .Total.Hotel}}</td>{{end}}<td class="n">{{.Money .Total.Sum}}</td></tr>
</table>
{{if .ShowPayment}}<div class="meta">{{.T "paid"}}: {{.Currency .Paid}}<br>{{.T "outstanding"}}: {{.Currency .Outstanding}}</div>{{end}}
{{if .Notice}}<div class="notice"><strong>{{.T "notice"}}</strong><br>{{.Notice}}</div>{{end}}
{{if .Confirmation}}<p>{{.Confirmation}}</p>{{end}}
<p class="tax">{{.TaxNote}}</p>
<p>______________________________<br>{{.T "signature"}}</p>
<footer>{{range .Footer}}<div>{{range .}}{{.}}<br>{{end}}</div>{{end}}</footer>
</div>
<embed src="{{.Links.PDF}}" type="application/pdf">
<iframe id="print-frame" title="print" style="display:none"></iframe>
<script>
function printInvoice() {
  var url = {{.Links.PDF}};
  var frame = document.getElementById("print-frame");
  try {
    frame.onload = function () {
      try {
        frame.contentWindow.focus();
        frame.contentWindow.print();
      } catch (e) {
        window.open(url, "_blank");
      }
    };
    frame.src = url;
  } catch (e) {
    window.open(url, "_blank");
  }
}
</script>
</body>
</html>
`))

// Preview renders the document as an HTML page.
func Preview(d *Document, links Links) ([]byte, error) {
	data := previewData{Document: d, Links: links}
	if len(d.Logo) > 0 {
		mime := http.DetectContentType(d.Logo)
		data.LogoURI = template.URL("data:" + mime + ";base64," + base64.StdEncoding.EncodeToString(d.Logo))
	}

	var buf bytes.Buffer
	if err := previewTemplate.Execute(&buf, data); err != nil {
		return nil, fmt.Errorf("failed to render preview: %w", err)
	}
	return buf.Bytes(), nil
}
