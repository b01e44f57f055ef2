package server

import "html/template"

var indexTemplate = template.Must(template.New("index").Parse(`<!DOCTYPE html>
<html>
<head>
    <title>{{.Station}}</title>
    <meta charset="utf-8" />
    <style>
        body { font-family: Arial, sans-serif; max-width: 600px; margin: 2rem auto; }
        .now { display: flex; gap: 1rem; align-items: center; }
        img.cover { width: 120px; height: 120px; object-fit: cover; border: 1px solid #ccc; }
        button { padding: 0.4rem 0.8rem; }
    </style>
    <script>
        async function refreshNowPlaying() {
            const res = await fetch('/nowplaying');
            const data = await res.json();
            document.getElementById('np-title').innerText = data.title || 'Unknown';
            document.getElementById('np-artist').innerText = data.artist || '';
            const img = document.getElementById('np-image');
            if (data.image) {
                img.src = data.image;
                img.style.display = 'block';
            } else {
                img.style.display = 'none';
            }
        }
        setInterval(refreshNowPlaying, {{.PollMillis}});
        window.onload = refreshNowPlaying;
    </script>
</head>
<body>
    <h1>{{.Station}}</h1>
    <div class="now">
        <img id="np-image" class="cover" style="display:none" />
        <div>
            <div id="np-title" style="font-size:1.2rem; font-weight:bold;">Loading...</div>
            <div id="np-artist" style="color:#555;"></div>
            <p><a href="/stream">Listen Live</a></p>
        </div>
    </div>
    <form action="/skip" method="post" style="margin-top:1rem;">
        <button type="submit">Skip Track</button>
    </form>
</body>
</html>
`))

const skipPage = `<p>Skipping...</p><meta http-equiv='refresh' content='1; url=/' />`

type indexData struct {
	Station    string
	PollMillis int
}
