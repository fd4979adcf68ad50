/*
Copyright © 2026 Drawsarous Authors
*/

package main

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/julienschmidt/httprouter"
)

func newPage(title, body string) string {
	var htmlBody strings.Builder

	htmlBody.WriteString(`<!DOCTYPE html><html lang="en"><head>`)
	htmlBody.WriteString(`<style>`)
	htmlBody.WriteString(`html,body,a{display:block;height:100%;width:100%;text-decoration:none;color:inherit;cursor:auto;}</style>`)
	htmlBody.WriteString(fmt.Sprintf("<title>%s</title></head>", title))
	htmlBody.WriteString(fmt.Sprintf("<body><a href=\"/\">%s</a></body></html>", body))

	return htmlBody.String()
}

func serveHomePage(cfg *Config) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		securityHeaders(cfg, w)

		_, _ = w.Write([]byte(homeHTML))
	}
}

func serveGamePage(cfg *Config) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		securityHeaders(cfg, w)

		_, _ = w.Write([]byte(gameHTML))
	}
}

const homeHTML = `<!doctype html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>Drawsarous</title>
<style>
  body { font-family: system-ui, sans-serif; margin: 2rem; max-width: 32rem; }
  input, button { font-size: 1rem; padding: 0.4rem; margin: 0.2rem 0; }
  #status { color: #a00; }
</style>
</head>
<body>
<h1>Drawsarous</h1>
<p>Draw. Guess. Win.</p>
<div id="status"></div>
<button id="create">Create a room</button>
<p>or join one:</p>
<input id="code" placeholder="room code">
<button id="join">Join</button>
<script>
(function() {
  const statusEl = document.getElementById('status');

  document.getElementById('create').onclick = async function() {
    const res = await fetch('api/rooms/create', { method: 'POST' });
    const body = await res.json();
    if (body.roomCode) {
      location.href = 'draw/' + body.roomCode;
    } else {
      statusEl.textContent = body.message || 'Could not create room.';
    }
  };

  document.getElementById('join').onclick = async function() {
    const code = document.getElementById('code').value.trim().toLowerCase();
    if (!code) return;
    const res = await fetch('api/rooms/check?roomCode=' + encodeURIComponent(code));
    const body = await res.json();
    if (body.exists) {
      location.href = 'draw/' + code;
    } else {
      statusEl.textContent = 'No such room.';
    }
  };
})();
</script>
</body>
</html>
`

const gameHTML = `<!doctype html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>Drawsarous</title>
<style>
  body { font-family: system-ui, sans-serif; margin: 1rem; display: flex; gap: 1rem; }
  #left { flex: 1; }
  #board { border: 1px solid #333; touch-action: none; }
  #side { width: 18rem; }
  #chat { height: 20rem; overflow-y: auto; border: 1px solid #ccc; padding: 0.3rem; }
  #players li, #scores li { padding: 0.1rem 0; }
  #word { font-weight: bold; }
</style>
</head>
<body>
<div id="left">
  <h2 id="status">Waiting for players…</h2>
  <div id="word"></div>
  <canvas id="board" width="640" height="480"></canvas>
  <div>
    <button id="pen">Pen</button>
    <button id="eraser">Eraser</button>
    <input type="color" id="color" value="#000000">
    <a id="qr" href="qr" target="_blank">Share QR</a>
  </div>
</div>
<div id="side">
  <h3>Players</h3>
  <ul id="players"></ul>
  <h3>Scores</h3>
  <ul id="scores"></ul>
  <div id="chat"></div>
  <input id="chatInput" placeholder="chat or guess">
</div>
<script>
(function() {
  const room = location.pathname.replace(/\/$/, '').split('/').pop();
  const playerId = localStorage.getItem('userId') || ('anon-' + Math.random().toString(36).slice(2, 10));
  localStorage.setItem('userId', playerId);
  const name = localStorage.getItem('name') || prompt('Your name:') || 'Player';
  localStorage.setItem('name', name);

  const statusEl = document.getElementById('status');
  const wordEl = document.getElementById('word');
  const chatEl = document.getElementById('chat');
  const chatInput = document.getElementById('chatInput');
  const canvas = document.getElementById('board');
  const ctx = canvas.getContext('2d');

  let drawerId = '';
  let color = '#000000';
  let eraser = false;
  let drawing = false;

  document.getElementById('pen').onclick = function() { eraser = false; };
  document.getElementById('eraser').onclick = function() { eraser = true; };
  document.getElementById('color').oninput = function(e) { color = e.target.value; };

  const proto = (location.protocol === 'https:') ? 'wss://' : 'ws://';
  const base = location.pathname.replace(/\/draw\/[^/]+\/?$/, '');
  const ws = new WebSocket(proto + location.host + base + '/ws');

  ws.onopen = function() {
    ws.send(JSON.stringify({ type: 'join', room: room, playerId: playerId, name: name }));
  };

  function paint(x, y, c, erase) {
    ctx.fillStyle = erase ? '#ffffff' : (c || '#000000');
    ctx.beginPath();
    ctx.arc(x, y, erase ? 12 : 4, 0, Math.PI * 2);
    ctx.fill();
  }

  function appendChat(text) {
    const div = document.createElement('div');
    div.textContent = text;
    chatEl.appendChild(div);
    chatEl.scrollTop = chatEl.scrollHeight;
  }

  ws.onmessage = function(event) {
    const msg = JSON.parse(event.data);

    switch (msg.type) {
    case 'updatePlayers': {
      const ul = document.getElementById('players');
      ul.innerHTML = '';
      msg.players.forEach(function(p) {
        const li = document.createElement('li');
        li.textContent = p;
        ul.appendChild(li);
      });
      break;
    }
    case 'waitingForPlayers':
      statusEl.textContent = 'Waiting for players (' + msg.count + ' connected)…';
      break;
    case 'gameStart':
      statusEl.textContent = 'Game on!';
      ctx.clearRect(0, 0, canvas.width, canvas.height);
      break;
    case 'gameState':
      drawerId = msg.drawerId;
      wordEl.textContent = '';
      ctx.clearRect(0, 0, canvas.width, canvas.height);
      statusEl.textContent = (drawerId === playerId) ? 'Your turn to draw!' : msg.drawerName + ' is drawing';
      break;
    case 'drawerWord':
      wordEl.textContent = 'Draw: ' + msg.word;
      break;
    case 'scoreUpdate': {
      const ul = document.getElementById('scores');
      ul.innerHTML = '';
      msg.players.forEach(function(p) {
        const li = document.createElement('li');
        li.textContent = p.name + ': ' + (msg.scores[p.playerId] || 0);
        ul.appendChild(li);
      });
      break;
    }
    case 'guessedCorrect':
      appendChat('✔ ' + msg.guesserName + ' guessed "' + msg.word + '"!');
      break;
    case 'gameOver':
      statusEl.textContent = msg.winnerName + ' wins!';
      wordEl.textContent = '';
      break;
    case 'gameEndNotEnoughPlayers':
      statusEl.textContent = 'Not enough players, game paused.';
      wordEl.textContent = '';
      break;
    case 'draw':
      paint(msg.x, msg.y, msg.color, msg.eraser);
      break;
    case 'message':
      appendChat(msg.text);
      break;
    }
  };

  function coords(e) {
    const rect = canvas.getBoundingClientRect();
    return {
      x: (e.clientX - rect.left) * canvas.width / rect.width,
      y: (e.clientY - rect.top) * canvas.height / rect.height
    };
  }

  canvas.addEventListener('pointerdown', function(e) {
    if (drawerId !== playerId) return;
    drawing = true;
    const p = coords(e);
    paint(p.x, p.y, eraser ? null : color, eraser);
    ws.send(JSON.stringify({ type: 'draw', x: p.x, y: p.y, color: eraser ? null : color, eraser: eraser }));
  });
  canvas.addEventListener('pointermove', function(e) {
    if (!drawing || drawerId !== playerId) return;
    const p = coords(e);
    paint(p.x, p.y, eraser ? null : color, eraser);
    ws.send(JSON.stringify({ type: 'draw', x: p.x, y: p.y, color: eraser ? null : color, eraser: eraser }));
  });
  window.addEventListener('pointerup', function() { drawing = false; });

  chatInput.addEventListener('keydown', function(e) {
    if (e.key !== 'Enter') return;
    const text = chatInput.value.trim();
    if (!text) return;
    ws.send(JSON.stringify({ type: 'message', text: text }));
    chatInput.value = '';
  });

  ws.onclose = function() {
    statusEl.textContent = 'Disconnected.';
  };
})();
</script>
</body>
</html>
`
