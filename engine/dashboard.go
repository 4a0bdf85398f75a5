package engine

const dashboardHTML = `<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
<title>Snakepit Dashboard</title>
<style>
  * { margin: 0; padding: 0; box-sizing: border-box; }
  body { font-family: -apple-system, BlinkMacSystemFont, 'Segoe UI', sans-serif;
         background: #1a1a2e; color: #eee; padding: 20px; }
  h1 { background: linear-gradient(135deg, #e94560, #c23152); padding: 14px 24px;
       border-radius: 10px; margin-bottom: 24px; color: white; font-size: 22px;
       display: flex; align-items: center; justify-content: space-between; }
  h2 { margin-bottom: 12px; font-size: 16px; color: #aaa; text-transform: uppercase;
       letter-spacing: 1px; }
  .grid { display: grid; grid-template-columns: repeat(auto-fit, minmax(180px, 1fr));
          gap: 14px; margin-bottom: 28px; }
  .card { background: #16213e; border-radius: 10px; padding: 18px;
          border-left: 4px solid #0f3460; }
  .card .label { font-size: 11px; text-transform: uppercase; color: #888; }
  .card .value { font-size: 32px; font-weight: bold; color: #e94560; margin-top: 4px; }
  table { width: 100%; border-collapse: collapse; background: #16213e;
          border-radius: 10px; overflow: hidden; }
  th { background: #0f3460; padding: 10px 14px; text-align: left; font-size: 12px;
       text-transform: uppercase; }
  td { padding: 9px 14px; border-bottom: 1px solid #1a1a2e; font-size: 14px; vertical-align: top; }
  td img { image-rendering: pixelated; border-radius: 4px; }
  .status-bar { font-size: 11px; color: #555; margin-top: 16px; text-align: right; }
</style>
</head>
<body>
<h1><span>Snakepit Server <span id="version" style="font-size:13px;font-weight:normal;color:rgba(255,255,255,0.5)"></span></span><span id="uptime" style="font-size:14px;font-weight:normal"></span></h1>
<div class="grid" id="cards"></div>
<h2>Games</h2>
<table>
  <thead><tr><th>Game</th><th>Phase</th><th>Players</th><th>Avg Tick</th><th>Board</th></tr></thead>
  <tbody id="games"></tbody>
</table>
<div class="status-bar" id="status">Connecting...</div>
<script>
const cardDefs = [
  {k:'games', label:'Games'}, {k:'waiting', label:'In Lobby'},
  {k:'playing', label:'Playing'}, {k:'finished', label:'Finished'},
  {k:'connections', label:'Connections'},
];
function esc(s) { let d=document.createElement('div'); d.textContent=s; return d.innerHTML; }
function render(d) {
  document.getElementById('uptime').textContent = d.uptime || '';
  if (d.version) document.getElementById('version').textContent = 'v' + d.version;
  let html = '';
  for (const c of cardDefs) {
    html += '<div class="card"><div class="label">'+c.label+'</div><div class="value">'+(d[c.k] ?? '-')+'</div></div>';
  }
  document.getElementById('cards').innerHTML = html;
  let rows = '';
  for (const g of (d.list || [])) {
    rows += '<tr><td>'+esc(g.id)+'</td><td>'+esc(g.phase)+(g.winner ? ' ('+esc(g.winner)+')' : '')+'</td><td>'+
            g.players.map(esc).join(', ')+'</td><td>'+g.avgTickMs+' ms</td><td><img width="200" src="/games/'+
            encodeURIComponent(g.id)+'/board.png?block=4&t='+Date.now()+'"></td></tr>';
  }
  document.getElementById('games').innerHTML = rows || '<tr><td colspan="5" style="color:#555;text-align:center">No games</td></tr>';
  document.getElementById('status').textContent = 'Last update: ' + new Date().toLocaleTimeString();
}
function poll() {
  fetch('/stats').then(r=>r.json()).then(render)
    .catch(e=>{ document.getElementById('status').textContent='Error: '+e; });
}
poll();
setInterval(poll, 2000);
</script>
</body>
</html>`
