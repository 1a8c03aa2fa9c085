package server

// pageTemplates holds the minimal HTML surface. Rendering is deliberately
// plain; the interesting behavior lives in the handlers.
const pageTemplates = `
{{define "head"}}
<!DOCTYPE html>
<html>
<head>
    <title>tracknotes</title>
    <style>
        body { font-family: -apple-system, BlinkMacSystemFont, "Segoe UI", Roboto, sans-serif;
               max-width: 640px; margin: 2rem auto; padding: 0 1rem; color: #222; }
        nav a { margin-right: 1rem; }
        pre { background: #f5f5f5; padding: 1rem; border-radius: 8px; white-space: pre-wrap; }
        input[type=text], input[type=password] { width: 100%; padding: 0.5rem; margin: 0.25rem 0 0.75rem; }
        button { padding: 0.5rem 1rem; }
    </style>
</head>
<body>
<nav><a href="/">Lookup</a><a href="/history">History</a><a href="/login">Login</a><a href="/signup">Signup</a><a href="/logout">Logout</a></nav>
{{end}}

{{define "foot"}}
</body>
</html>
{{end}}

{{define "index"}}
{{template "head" .}}
<h1>Track lookup</h1>
<form method="POST" action="/">
    <label>Track URL</label>
    <input type="text" name="track_url" placeholder="https://open.spotify.com/track/...">
    <button type="submit">Look up</button>
</form>
{{template "foot" .}}
{{end}}

{{define "confirm"}}
{{template "head" .}}
<h1>Confirm</h1>
<p><strong>{{.Record.TrackName}}</strong> by {{.Record.ArtistName}}</p>
<pre>{{.Record.Description}}</pre>
<form method="POST" action="/confirm">
    <input type="hidden" name="confirmed_data" value="{{.Content}}">
    <button type="submit">Send to workspace</button>
</form>
{{if .SignedIn}}
<form method="POST" action="/save_search">
    <input type="hidden" name="confirmed_data" value="{{.Content}}">
    <button type="submit">Save to history</button>
</form>
{{end}}
{{template "foot" .}}
{{end}}

{{define "signup"}}
{{template "head" .}}
<h1>Sign up</h1>
<form method="POST" action="/signup">
    <label>Username</label>
    <input type="text" name="username">
    <label>Password</label>
    <input type="password" name="password">
    <button type="submit">Sign up</button>
</form>
{{template "foot" .}}
{{end}}

{{define "login"}}
{{template "head" .}}
<h1>Log in</h1>
<form method="POST" action="/login">
    <label>Username</label>
    <input type="text" name="username">
    <label>Password</label>
    <input type="password" name="password">
    <button type="submit">Log in</button>
</form>
{{template "foot" .}}
{{end}}

{{define "history"}}
{{template "head" .}}
<h1>{{.Username}}'s search history</h1>
{{range .Entries}}
<p><strong>{{.Record.TrackName}}</strong> by {{.Record.ArtistName}} <em>({{.Saved}})</em></p>
<pre>{{.Record.Description}}</pre>
{{else}}
<p>No saved searches yet.</p>
{{end}}
{{template "foot" .}}
{{end}}

{{define "message"}}
{{template "head" .}}
<p>{{.Message}}</p>
<p><a href="/">Back to lookup</a></p>
{{template "foot" .}}
{{end}}

{{define "notfound"}}
{{template "head" .}}
<h1>404</h1>
<p>That page does not exist.</p>
<p><a href="/">Back to lookup</a></p>
{{template "foot" .}}
{{end}}
`
