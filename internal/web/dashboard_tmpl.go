package web

const dashboardTemplate = `<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
<title>{{.Title}}</title>
<script src="{{.PlotlyURL}}"></script>
<style>
:root { --fg: {{.Palette.Text}}; --accent: {{.Palette.Accent}}; --grid: {{.Palette.Grid}}; --bg: #fff; --muted: #7f8c8d; --alt: #f8f9fa; }
* { box-sizing: border-box; }
body { font-family: -apple-system, BlinkMacSystemFont, "Segoe UI", Roboto, sans-serif; color: var(--fg); background: var(--bg); margin: 0 auto; padding: 1rem 2rem; max-width: 1400px; }
h1 { text-align: center; font-size: 1.75rem; margin: .5rem 0 1.5rem; }
.controls { display: grid; grid-template-columns: repeat(3, 1fr); gap: 1rem; margin-bottom: 1rem; }
.controls label { display: block; font-size: .8rem; color: var(--muted); margin-bottom: .25rem; }
.controls select, .controls input { width: 100%; padding: .4rem .5rem; border: 1px solid var(--grid); border-radius: 4px; color: var(--fg); }
.error { display: none; background: #fdecea; border: 1px solid #e74c3c; color: #c0392b; padding: .5rem .75rem; border-radius: 4px; margin-bottom: 1rem; }
table { width: 100%; border-collapse: collapse; font-size: .85rem; }
th, td { padding: .4rem .6rem; border-bottom: 1px solid var(--grid); text-align: left; }
th { cursor: pointer; user-select: none; background: var(--alt); }
th.sorted::after { content: " \25B2"; font-size: .7rem; }
th.sorted.desc::after { content: " \25BC"; }
tbody tr { cursor: pointer; }
tbody tr:hover { background: var(--alt); }
tbody tr.selected { background: #eaf4fc; }
td.num { text-align: right; font-variant-numeric: tabular-nums; }
.pager { display: flex; gap: .5rem; align-items: center; justify-content: flex-end; margin: .5rem 0 1.5rem; font-size: .85rem; }
.pager button { padding: .25rem .6rem; border: 1px solid var(--grid); background: var(--bg); border-radius: 4px; cursor: pointer; }
.charts { display: grid; grid-template-columns: repeat(3, 1fr); gap: 1rem; }
@media (max-width: 900px) { .controls, .charts { grid-template-columns: 1fr; } }
.chart { min-height: 320px; border: 1px solid var(--grid); border-radius: 6px; }
.muted { color: var(--muted); font-size: .8rem; }
</style>
</head>
<body>
<h1>{{.Title}}</h1>
<div class="controls">
  <div><label for="project">Project</label><select id="project"></select></div>
  <div><label for="file">Result file</label><select id="file"></select></div>
  <div><label for="genes">Lead genes (comma-separated)</label><input id="genes" type="text" placeholder="e.g. TP53, EGFR"></div>
</div>
<div id="error" class="error"></div>
<p class="muted">Terms with nominal p-value &le; {{.Threshold}}. Click a row to plot its leading-edge genes.</p>
<table>
  <thead><tr id="head"></tr></thead>
  <tbody id="rows"></tbody>
</table>
<div class="pager">
  <span id="total" class="muted"></span>
  <button id="prev" type="button">&lsaquo;</button>
  <span id="pageinfo"></span>
  <button id="next" type="button">&rsaquo;</button>
</div>
<div class="charts">
{{- range .Kinds}}
  <div class="chart" id="chart-{{.}}"></div>
{{- end}}
</div>
<script>
(function () {
  "use strict";
  var API = {{.APIBase}};
  var COLUMNS = {{json .Columns}};
  var KINDS = {{json .Kinds}};
  var GENE_DELAY = {{json .GeneDelay}};
  var state = {};
  var view = null;
  var $ = function (id) { return document.getElementById(id); };

  function dispatch(event) {
    return fetch(API + "/dispatch", {
      method: "POST",
      headers: { "Content-Type": "application/json" },
      body: JSON.stringify({ state: state, event: event })
    }).then(function (res) {
      return res.json().then(function (body) {
        if (!res.ok) { throw new Error(body.error || res.statusText); }
        return body;
      });
    }).then(render).catch(function (err) { showError(err.message); });
  }

  function showError(msg) {
    var el = $("error");
    el.textContent = msg || "";
    el.style.display = msg ? "block" : "none";
  }

  function fillSelect(el, options, value) {
    el.innerHTML = "";
    options.forEach(function (o) {
      var opt = document.createElement("option");
      opt.value = o.value;
      opt.textContent = o.label;
      el.appendChild(opt);
    });
    el.value = value || "";
  }

  function fmt(col, v) {
    if (v === null || v === undefined) { return ""; }
    if (col.precision < 0) { return Array.isArray(v) ? v.join(";") : String(v); }
    return Number(v).toFixed(col.precision);
  }

  function renderHead() {
    var head = $("head");
    head.innerHTML = "";
    COLUMNS.forEach(function (col) {
      var th = document.createElement("th");
      th.textContent = col.name;
      if (state.sort === col.id) {
        th.className = "sorted" + (state.desc ? " desc" : "");
      }
      th.onclick = function () {
        var desc = state.sort === col.id ? !state.desc : false;
        dispatch({ type: "sort.changed", value: col.id, desc: desc });
      };
      head.appendChild(th);
    });
  }

  function renderRows(terms) {
    var body = $("rows");
    body.innerHTML = "";
    terms.rows.forEach(function (row) {
      var tr = document.createElement("tr");
      if (state.row === row.index) { tr.className = "selected"; }
      COLUMNS.forEach(function (col) {
        var td = document.createElement("td");
        td.textContent = fmt(col, row[col.id]);
        if (col.precision >= 0) { td.className = "num"; }
        tr.appendChild(td);
      });
      tr.onclick = function () {
        dispatch({ type: "row.selected", row: row.index, view_id: terms.view_id });
      };
      body.appendChild(tr);
    });
    $("total").textContent = terms.total + " terms";
    $("pageinfo").textContent = (terms.page + 1) + " / " + terms.pages;
    $("prev").disabled = terms.page <= 0;
    $("next").disabled = terms.page + 1 >= terms.pages;
  }

  function renderCharts(charts) {
    KINDS.forEach(function (kind) {
      var fig = charts.figures[kind];
      Plotly.react("chart-" + kind, fig.data, fig.layout, { displayModeBar: false, responsive: true });
    });
  }

  function render(v) {
    view = v;
    state = v.state;
    showError(v.error);
    fillSelect($("project"), v.projects, state.project);
    fillSelect($("file"), v.files, state.file);
    if (document.activeElement !== $("genes")) { $("genes").value = state.genes || ""; }
    renderHead();
    renderRows(v.terms);
    renderCharts(v.charts);
  }

  $("project").onchange = function (e) { dispatch({ type: "project.selected", value: e.target.value }); };
  $("file").onchange = function (e) { dispatch({ type: "file.selected", value: e.target.value }); };
  var geneTimer = null;
  function genesChanged() {
    clearTimeout(geneTimer);
    geneTimer = null;
    if ($("genes").value !== (state.genes || "")) {
      dispatch({ type: "genes.changed", value: $("genes").value });
    }
  }
  $("genes").oninput = function () {
    clearTimeout(geneTimer);
    geneTimer = setTimeout(genesChanged, GENE_DELAY);
  };
  $("genes").onchange = genesChanged;
  $("prev").onclick = function () { dispatch({ type: "page.changed", page: Math.max(0, view.terms.page - 1) }); };
  $("next").onclick = function () { dispatch({ type: "page.changed", page: view.terms.page + 1 }); };

  if (window.EventSource) {
    var es = new EventSource(API + "/events");
    // index.updated is throttled server-side; catalog.updated fires per change.
    es.addEventListener("index.updated", function () { dispatch({ type: "refresh" }); });
  }

  dispatch({ type: "init" });
})();
</script>
</body>
</html>
`
