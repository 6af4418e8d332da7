package web

import "html/template"

// The promotional page ships inline; everything here is static
// presentation with no behavior beyond the waitlist form.
var landingPage = template.Must(template.New("landing").Parse(`<!doctype html>
<html lang="en">
<head>
<meta charset="utf-8" />
<meta name="viewport" content="width=device-width,initial-scale=1" />
<title>Forma — text to 3D in minutes</title>
<style>
body{font-family:system-ui,Arial,sans-serif;margin:0;color:#1a1a2e}
.hero{padding:96px 24px;text-align:center;background:#0f0f1a;color:#fff}
.hero h1{font-size:2.6rem;margin:0 0 12px}
.hero p{color:#9ca3af;max-width:560px;margin:0 auto 32px}
section{max-width:960px;margin:0 auto;padding:64px 24px}
.cards{display:grid;grid-template-columns:repeat(auto-fit,minmax(240px,1fr));gap:24px}
.card{border:1px solid #e5e7eb;border-radius:12px;padding:24px}
.card h3{margin-top:0}
form{display:flex;gap:8px;justify-content:center;flex-wrap:wrap}
input[type=email]{padding:10px 14px;border-radius:8px;border:1px solid #888;min-width:260px}
button{padding:10px 20px;border-radius:8px;border:none;background:#6366f1;color:#fff;cursor:pointer}
footer{padding:32px 24px;text-align:center;color:#666;font-size:13px;border-top:1px solid #e5e7eb}
.small{font-size:12px;color:#9ca3af;margin-top:8px}
</style>
</head>
<body>
<div class="hero">
  <h1>Turn a sentence into a 3D model</h1>
  <p>Forma generates production-ready 3D assets from plain text. Describe it, wait a couple of minutes, drop it into your scene.</p>
  <form method="post" action="/api/waitlist">
    <input type="email" name="email" placeholder="you@studio.com" required />
    <input type="hidden" name="source" value="hero" />
    <button type="submit">Join the waitlist</button>
  </form>
  <div class="small">{{.WaitlistCount}} creators already waiting</div>
</div>
<section>
  <div class="cards">
    <div class="card"><h3>Text to mesh</h3><p>Prompt in, textured glTF out. No sculpting, no retopo.</p></div>
    <div class="card"><h3>Track every job</h3><p>Live status from queued to done, with progress you can trust.</p></div>
    <div class="card"><h3>Made for engines</h3><p>Exports tuned for Unity, Unreal and the web.</p></div>
  </div>
</section>
<section>
  <div class="cards">
    <div class="card"><h3>Mara Lindqvist</h3><p>Founder. Previously rendering lead at a AAA studio.</p></div>
    <div class="card"><h3>Deniz Aksoy</h3><p>ML. Diffusion models for geometry since before it was cool.</p></div>
    <div class="card"><h3>Jonah Petty</h3><p>Infra. Keeps the GPUs fed and the queue honest.</p></div>
  </div>
</section>
<footer>© {{.Year}} Forma Labs — hello@forma3d.app</footer>
</body>
</html>`))
